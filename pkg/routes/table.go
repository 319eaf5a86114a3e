// Package routes holds the static route table: for each (current location,
// destination) pair, three precomputed waypoint sequences the operators can
// choose between. The table is data, not logic — it can be swapped out with
// a YAML file without touching the negotiation code.
package routes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Wire names of the three route alternatives.
const (
	AltLeft   = "route_left"
	AltCenter = "route_center"
	AltRight  = "route_right"
)

// Key is an ordered (from, to) location pair.
type Key struct {
	From string
	To   string
}

// Plan holds the three alternative waypoint sequences between a location
// pair. An empty sequence means a direct move.
type Plan struct {
	Left   []string `yaml:"left"`
	Center []string `yaml:"center"`
	Right  []string `yaml:"right"`
}

// Alternative returns the waypoint sequence for a wire alternative name.
// Unknown names return an empty sequence, which commits a direct move —
// same behavior as a table miss.
func (p Plan) Alternative(name string) []string {
	switch name {
	case AltLeft:
		return p.Left
	case AltCenter:
		return p.Center
	case AltRight:
		return p.Right
	default:
		return nil
	}
}

// Table maps location pairs to route plans.
type Table struct {
	plans map[Key]Plan
}

// Lookup returns the plan for (from, to). A miss yields the empty plan,
// never an error: the operators can still commit a direct move.
func (t *Table) Lookup(from, to string) Plan {
	if t == nil {
		return Plan{}
	}
	return t.plans[Key{From: from, To: to}]
}

// Len returns the number of configured pairs.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.plans)
}

// routeFile is the YAML on-disk shape.
type routeFile struct {
	Routes []routeEntry `yaml:"routes"`
}

type routeEntry struct {
	From   string   `yaml:"from"`
	To     string   `yaml:"to"`
	Left   []string `yaml:"left"`
	Center []string `yaml:"center"`
	Right  []string `yaml:"right"`
}

// Load reads a route table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route table: %w", err)
	}

	var file routeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse route table: %w", err)
	}

	plans := make(map[Key]Plan, len(file.Routes))
	for _, r := range file.Routes {
		plans[Key{From: r.From, To: r.To}] = Plan{
			Left:   r.Left,
			Center: r.Center,
			Right:  r.Right,
		}
	}
	return &Table{plans: plans}, nil
}

// New builds a table from an in-memory map. Used by tests and Builtin.
func New(plans map[Key]Plan) *Table {
	copied := make(map[Key]Plan, len(plans))
	for k, v := range plans {
		copied[k] = v
	}
	return &Table{plans: copied}
}
