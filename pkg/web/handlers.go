package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/hrilab/go-duo/internal/log"
	"github.com/hrilab/go-duo/pkg/actuator"
	"github.com/hrilab/go-duo/pkg/negotiation"
	"github.com/hrilab/go-duo/pkg/protocol"
	"github.com/hrilab/go-duo/pkg/routes"
	"github.com/hrilab/go-duo/pkg/session"
)

// handleKachakaWS runs one negotiation-channel connection: seat the
// client, greet it, then dispatch its requests until it drops.
func (s *Server) handleKachakaWS(conn *websocket.Conn) {
	client := s.registry.Connect(conn)
	defer s.disconnectKachaka(client)

	selector := s.negotiator.Selector()
	greeting := "パートナーが目的地を選ぶのを待っています..."
	if client.Role == selector {
		greeting = "どこに行きますか？"
	}
	client.Send(protocol.UserAssigned{
		Type:                protocol.TypeUserAssigned,
		UserID:              string(client.Role),
		Message:             greeting,
		CurrentLocation:     s.negotiator.CurrentLocation(),
		DestinationSelector: string(selector),
	})
	s.broadcastConnectionStatus()
	s.events.Append(string(client.Role), "CONNECT", "",
		string(selector), s.negotiator.CurrentLocation())

	for {
		data, err := client.NextMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseOperatorMessage(data)
		if err != nil {
			log.Warn("malformed operator message", "role", client.Role, "error", err)
			client.Send(protocol.NewError("不正なメッセージです。"))
			continue
		}

		switch msg.Action {
		case protocol.ActionRequestDestination:
			s.handleRequestDestination(client, msg)
		case protocol.ActionSelectRoute:
			s.handleSelectRoute(client, msg)
		default:
			client.Send(protocol.NewError("不明な操作です。"))
		}
	}
}

// disconnectKachaka frees the seat and resets a half-finished round.
// Historical state (location, selector) survives; only the in-flight
// proposal is cleared.
func (s *Server) disconnectKachaka(client *session.Client) {
	s.registry.Disconnect(client)

	if client.Role.Operator() {
		s.negotiator.ClearPending()
		s.registry.Broadcast(protocol.UserDisconnected{
			Type:    protocol.TypeUserDisconnected,
			Message: "リセットされました",
		})
		s.events.Append(string(client.Role), "DISCONNECT", "",
			string(s.negotiator.Selector()), s.negotiator.CurrentLocation())
	}
	s.broadcastConnectionStatus()
}

// handleRequestDestination processes the selector's destination proposal.
func (s *Server) handleRequestDestination(client *session.Client, msg *protocol.OperatorMessage) {
	if msg.Location == nil || msg.Location.Name == "" {
		client.Send(protocol.NewError("目的地が指定されていません。"))
		return
	}
	destination := msg.Location.Name

	plan, err := s.negotiator.RequestDestination(client.Role, destination)
	if err != nil {
		client.Send(protocol.NewError(requestErrorText(err)))
		return
	}

	s.registry.Broadcast(protocol.WaitingForRoute{
		Type:              protocol.TypeWaitingForRoute,
		Message:           fmt.Sprintf("目的地「%s」選択済", destination),
		ForUser:           string(client.Role.Partner()),
		RouteOptions:      routeOptions(plan),
		TargetDestination: destination,
	})
	client.Send(map[string]string{
		"type":    string(protocol.TypeWaitingForRoute),
		"message": "パートナーの経路選択を待っています...",
	})
	s.events.Append(string(client.Role), "REQUEST_DESTINATION", destination,
		string(s.negotiator.Selector()), s.negotiator.CurrentLocation())
}

// handleSelectRoute processes the partner's route choice and, on success,
// commits the batch to the motion queue.
func (s *Server) handleSelectRoute(client *session.Client, msg *protocol.OperatorMessage) {
	commit, err := s.negotiator.SelectRoute(client.Role, msg.Route)
	if err != nil {
		if errors.Is(err, negotiation.ErrDestinationUnresolved) {
			// No operator can retry this without re-selecting, so the
			// whole session hears about it.
			s.registry.Broadcast(protocol.NewError("目的地が見つかりませんでした。もう一度選んでください。"))
			return
		}
		client.Send(protocol.NewError(selectErrorText(err)))
		return
	}

	s.registry.Broadcast(protocol.NewStartingMove(commit.Message))
	s.events.Append(string(client.Role), "SELECT_ROUTE",
		msg.Route+" -> "+commit.Destination.Name,
		string(s.negotiator.Selector()), s.negotiator.CurrentLocation())

	// Let clients show the announcement before the first moving status
	// lands. The round stays pending through the sleep, so neither
	// operator can start a second negotiation against the stale location.
	time.Sleep(1 * time.Second)

	s.queue.PushBatch(commit.Batch)
	s.negotiator.Committed()
}

// handleServoWS runs one actuator-channel connection. The rig keeps
// moving only while the operator holds a direction; on disconnect every
// axis they touched is stopped.
func (s *Server) handleServoWS(conn *websocket.Conn) {
	var lastUser string
	defer func() {
		if lastUser != "" {
			s.rig.StopUser(lastUser)
			log.Info("servo client gone, axes stopped", "user", lastUser)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseServoMessage(data)
		if err != nil {
			log.Warn("malformed servo message", "error", err)
			continue
		}

		var dir actuator.Direction
		switch msg.Command {
		case protocol.CommandIncrease:
			dir = actuator.DirIncrease
		case protocol.CommandDecrease:
			dir = actuator.DirDecrease
		case protocol.CommandStop:
			dir = actuator.DirStop
		default:
			log.Warn("unknown servo command", "command", msg.Command)
			continue
		}

		if err := s.rig.SetDirection(msg.UserID, msg.Axis, dir); err != nil {
			log.Warn("servo command rejected", "user", msg.UserID, "axis", msg.Axis, "error", err)
			continue
		}
		lastUser = msg.UserID
	}
}

// routeOptions converts a route plan to its wire shape.
func routeOptions(plan routes.Plan) protocol.RouteOptions {
	return protocol.RouteOptions{
		Left:   emptyIfNil(plan.Left),
		Center: emptyIfNil(plan.Center),
		Right:  emptyIfNil(plan.Right),
	}
}

// emptyIfNil keeps empty alternatives as [] on the wire, not null.
func emptyIfNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

// requestErrorText maps REQUEST_DESTINATION failures to operator-facing
// messages.
func requestErrorText(err error) string {
	var cooldown *negotiation.CooldownError
	switch {
	case errors.Is(err, negotiation.ErrWrongTurn):
		return "現在あなたのターンではありません。"
	case errors.Is(err, negotiation.ErrNoPartner):
		return "パートナーがいません。"
	case errors.Is(err, negotiation.ErrBusy):
		return "処理中です。"
	case errors.As(err, &cooldown):
		return fmt.Sprintf("クールダウン中です。あと%.0f秒お待ちください。", cooldown.Remaining.Seconds())
	default:
		return "処理に失敗しました。"
	}
}

// selectErrorText maps SELECT_ROUTE failures to operator-facing messages.
func selectErrorText(err error) string {
	switch {
	case errors.Is(err, negotiation.ErrWrongTurn):
		return "あなたは目的地選択担当です。"
	case errors.Is(err, negotiation.ErrBusy):
		return "移動中です。"
	case errors.Is(err, negotiation.ErrNoPendingRequest):
		return "先に目的地を選んでください。"
	default:
		return "処理に失敗しました。"
	}
}
