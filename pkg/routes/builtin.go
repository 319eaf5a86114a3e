package routes

import "github.com/hrilab/go-duo/internal/log"

// chargingDock is the robot's home position and the initial "from" node.
const chargingDock = "充電ドック"

// Builtin returns the route table surveyed on the lab map: the charging dock
// plus numbered destinations 1-6 shaped by waypoints a-e. Pairs not listed
// here fall back to the empty plan, i.e. a direct move — hubs added to the
// map later work without a table edit, just without route alternatives.
func Builtin() *Table {
	plans := map[Key]Plan{
		{chargingDock, "1"}: {Left: []string{"a"}, Center: []string{"b"}, Right: []string{"e", "c", "d"}},
		{chargingDock, "2"}: {Left: []string{"a", "d"}, Center: []string{"b", "d"}, Right: []string{"e", "c"}},
		{chargingDock, "3"}: {Left: []string{"a", "d", "c"}, Center: []string{"b", "c"}, Right: []string{"e"}},
		{chargingDock, "4"}: {Left: []string{"a", "d"}, Center: []string{"b"}, Right: []string{"e", "c", "d"}},
		{chargingDock, "5"}: {Left: []string{}, Center: []string{"b"}, Right: []string{"e"}},
		{chargingDock, "6"}: {Left: []string{"a"}, Center: []string{"b"}, Right: []string{"e"}},

		{"1", "2"}: {Left: []string{"d"}, Center: []string{"b", "c"}, Right: []string{"a", "e", "c"}},
		{"1", "3"}: {Left: []string{"a", "e"}, Center: []string{"b", "c"}, Right: []string{"d", "c"}},
		{"1", "4"}: {Left: []string{"a", "b"}, Center: []string{"d"}, Right: []string{"d", "c", "b"}},
		{"1", "5"}: {Left: []string{"a"}, Center: []string{"b"}, Right: []string{"d", "c", "e"}},
		{"1", "6"}: {Left: []string{"a"}, Center: []string{"d", "b"}, Right: []string{"d", "c", "e"}},

		{"2", "1"}: {Left: []string{"c", "e", "a"}, Center: []string{"c", "b", "a"}, Right: []string{"d"}},
		{"2", "3"}: {Left: []string{"d", "a", "e"}, Center: []string{"b", "e"}, Right: []string{"c"}},
		{"2", "4"}: {Left: []string{"d", "a", "b"}, Center: []string{"d"}, Right: []string{"c", "b"}},
		{"2", "5"}: {Left: []string{"d", "a"}, Center: []string{"b"}, Right: []string{"c", "e"}},
		{"2", "6"}: {Left: []string{"d", "a"}, Center: []string{"b"}, Right: []string{"c", "e"}},

		{"3", "1"}: {Left: []string{"e", "a"}, Center: []string{"c", "b", "d"}, Right: []string{"c", "d"}},
		{"3", "2"}: {Left: []string{"e", "a", "d"}, Center: []string{"b", "d"}, Right: []string{"c"}},
		{"3", "4"}: {Left: []string{"e", "a", "d"}, Center: []string{"c", "b"}, Right: []string{"c", "d"}},
		{"3", "5"}: {Left: []string{"e"}, Center: []string{"c", "b"}, Right: []string{"c", "d", "a"}},
		{"3", "6"}: {Left: []string{"e", "a"}, Center: []string{"e"}, Right: []string{"c", "b"}},

		{"4", "1"}: {Left: []string{"a"}, Center: []string{"b", "a"}, Right: []string{"d", "c", "e"}},
		{"4", "2"}: {Left: []string{"d", "a", "e", "c"}, Center: []string{"b", "c"}, Right: []string{"c"}},
		{"4", "3"}: {Left: []string{"a", "e"}, Center: []string{"b", "c"}, Right: []string{"c"}},
		{"4", "5"}: {Left: []string{"a"}, Center: []string{"b"}, Right: []string{"c", "e"}},
		{"4", "6"}: {Left: []string{"a"}, Center: []string{"b"}, Right: []string{"c", "e"}},

		{"5", "1"}: {Left: []string{"a"}, Center: []string{"b"}, Right: []string{"e", "c", "d"}},
		{"5", "2"}: {Left: []string{"a", "d"}, Center: []string{"b", "d"}, Right: []string{"e", "c"}},
		{"5", "3"}: {Left: []string{"a", "d"}, Center: []string{"c"}, Right: []string{"e"}},
		{"5", "4"}: {Left: []string{"a", "d"}, Center: []string{"b"}, Right: []string{"e", "c"}},
		{"5", "6"}: {Left: []string{"a"}, Center: []string{"b"}, Right: []string{"e"}},

		{"6", "1"}: {Left: []string{"a"}, Center: []string{"b"}, Right: []string{"e", "c", "d"}},
		{"6", "2"}: {Left: []string{"a", "d"}, Center: []string{"b", "4"}, Right: []string{"e", "c"}},
		{"6", "3"}: {Left: []string{"a", "d", "c"}, Center: []string{"e", "c"}, Right: []string{"e"}},
		{"6", "4"}: {Left: []string{"a"}, Center: []string{"b"}, Right: []string{"c"}},
		{"6", "5"}: {Left: []string{"a"}, Center: []string{"b"}, Right: []string{"e"}},
	}
	return New(plans)
}

// Open loads the table at path, falling back to the builtin map when the
// path is empty or unreadable.
func Open(path string) *Table {
	if path == "" {
		return Builtin()
	}
	table, err := Load(path)
	if err != nil {
		log.Warn("route table load failed, using builtin", "path", path, "error", err)
		return Builtin()
	}
	log.Info("route table loaded", "path", path, "pairs", table.Len())
	return table
}
