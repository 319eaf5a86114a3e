// opctl is a terminal operator client for poking a running duo-server by
// hand: connect to either channel, type commands, watch the broadcasts.
//
// Negotiation channel:
//
//	opctl -server localhost:8000 -channel kachaka
//	> go 3            (REQUEST_DESTINATION "3")
//	> route center    (SELECT_ROUTE "route_center")
//
// Servo channel:
//
//	opctl -server localhost:8000 -channel servo
//	> user_1 vertical increase
//	> user_1 vertical stop
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/websocket"
)

func main() {
	server := flag.String("server", "localhost:8000", "duo-server host:port")
	channel := flag.String("channel", "kachaka", "channel to join: kachaka or servo")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *server, Path: "/ws/" + *channel}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", u.String(), err)
		os.Exit(1)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", u.String())

	// Print everything the server pushes.
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				fmt.Fprintf(os.Stderr, "\nconnection closed: %v\n", err)
				os.Exit(0)
			}
			fmt.Printf("<< %s\n", data)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var payload any
		if strings.HasPrefix(line, "{") {
			// Raw JSON passthrough.
			payload = json.RawMessage(line)
		} else if *channel == "servo" {
			payload = parseServoLine(line)
		} else {
			payload = parseKachakaLine(line)
		}
		if payload == nil {
			fmt.Println("unrecognized command")
			continue
		}

		if err := conn.WriteJSON(payload); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			return
		}
	}
}

func parseKachakaLine(line string) any {
	fields := strings.Fields(line)
	switch {
	case fields[0] == "go" && len(fields) == 2:
		return map[string]any{
			"action":   "REQUEST_DESTINATION",
			"location": map[string]string{"name": fields[1]},
		}
	case fields[0] == "route" && len(fields) == 2:
		return map[string]any{
			"action": "SELECT_ROUTE",
			"route":  "route_" + fields[1],
		}
	default:
		return nil
	}
}

func parseServoLine(line string) any {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return nil
	}
	return map[string]string{
		"user_id": fields[0],
		"axis":    fields[1],
		"command": fields[2],
	}
}
