// Package parser implements the line-oriented wire formats of both
// simulators: the target telemetry stream and the mount control protocol.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/saviobatista/pointing-sim/internal/geom"
	"github.com/saviobatista/pointing-sim/internal/types"
)

// Telemetry lines are `x;y;z;vx;vy;vz;track;altitude`, one decimal place,
// lengths in metres, angles in degrees.
const telemetryFieldCount = 8

// ParseTargetInfo parses one telemetry line into a target sample.
func ParseTargetInfo(line string) (*types.TargetInfoMessage, error) {
	fields := strings.Split(strings.TrimSpace(line), ";")
	if len(fields) != telemetryFieldCount {
		return nil, fmt.Errorf("invalid telemetry line: expected %d fields, got %d", telemetryFieldCount, len(fields))
	}

	vals := make([]float64, telemetryFieldCount)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telemetry field %d %q: %w", i, f, err)
		}
		vals[i] = v
	}

	return &types.TargetInfoMessage{
		Position: geom.Point3[geom.Local]{X: vals[0], Y: vals[1], Z: vals[2]},
		Velocity: geom.Vector3[geom.Local]{X: vals[3], Y: vals[4], Z: vals[5]},
		Track:    vals[6],
		Altitude: vals[7],
	}, nil
}

// FormatTargetInfo renders a target sample as one telemetry line, without the
// trailing newline.
func FormatTargetInfo(msg *types.TargetInfoMessage) string {
	return fmt.Sprintf("%.1f;%.1f;%.1f;%.1f;%.1f;%.1f;%.1f;%.1f",
		msg.Position.X, msg.Position.Y, msg.Position.Z,
		msg.Velocity.X, msg.Velocity.Y, msg.Velocity.Z,
		msg.Track, msg.Altitude)
}

// MountRequestKind enumerates the mount control protocol requests.
type MountRequestKind int

const (
	ReqGetPosition MountRequestKind = iota
	ReqSlew
	ReqStop
)

// MountRequest is one parsed controller request. Axis fields are only
// meaningful for ReqSlew.
type MountRequest struct {
	Kind  MountRequestKind
	Axis1 float64 // °/s
	Axis2 float64 // °/s
}

// ParseMountRequest parses one controller request line.
//
// Wire format: `GetPosition`, `Slew;<axis1 °/s>;<axis2 °/s>`, `Stop`.
func ParseMountRequest(line string) (*MountRequest, error) {
	fields := strings.Split(strings.TrimSpace(line), ";")
	switch fields[0] {
	case "GetPosition":
		if len(fields) != 1 {
			return nil, fmt.Errorf("invalid GetPosition request: %q", line)
		}
		return &MountRequest{Kind: ReqGetPosition}, nil

	case "Slew":
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid Slew request: expected 3 fields, got %d", len(fields))
		}
		axis1, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Slew axis1 %q: %w", fields[1], err)
		}
		axis2, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Slew axis2 %q: %w", fields[2], err)
		}
		return &MountRequest{Kind: ReqSlew, Axis1: axis1, Axis2: axis2}, nil

	case "Stop":
		if len(fields) != 1 {
			return nil, fmt.Errorf("invalid Stop request: %q", line)
		}
		return &MountRequest{Kind: ReqStop}, nil

	default:
		return nil, fmt.Errorf("unknown mount request: %q", line)
	}
}

// FormatMountRequest renders a request line for the client side.
func FormatMountRequest(req *MountRequest) string {
	switch req.Kind {
	case ReqSlew:
		return fmt.Sprintf("Slew;%.4f;%.4f", req.Axis1, req.Axis2)
	case ReqStop:
		return "Stop"
	default:
		return "GetPosition"
	}
}

// MountReplyKind enumerates the mount control protocol replies.
type MountReplyKind int

const (
	ReplyPosition MountReplyKind = iota
	ReplyOK
	ReplyError
)

// MountReply is one parsed server reply. Axis fields are only meaningful for
// ReplyPosition; Message only for ReplyError.
type MountReply struct {
	Kind    MountReplyKind
	Axis1   float64 // degrees
	Axis2   float64 // degrees
	Message string
}

// ParseMountReply parses one server reply line.
//
// Wire format: `Position;<axis1 deg>;<axis2 deg>`, `Ok`, `Error;<message>`.
func ParseMountReply(line string) (*MountReply, error) {
	fields := strings.SplitN(strings.TrimSpace(line), ";", 3)
	switch fields[0] {
	case "Position":
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid Position reply: %q", line)
		}
		axis1, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Position axis1 %q: %w", fields[1], err)
		}
		axis2, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Position axis2 %q: %w", fields[2], err)
		}
		return &MountReply{Kind: ReplyPosition, Axis1: axis1, Axis2: axis2}, nil

	case "Ok":
		return &MountReply{Kind: ReplyOK}, nil

	case "Error":
		msg := ""
		if len(fields) > 1 {
			msg = strings.Join(fields[1:], ";")
		}
		return &MountReply{Kind: ReplyError, Message: msg}, nil

	default:
		return nil, fmt.Errorf("unknown mount reply: %q", line)
	}
}

// FormatPositionReply renders a Position reply line.
func FormatPositionReply(axis1, axis2 float64) string {
	return fmt.Sprintf("Position;%.4f;%.4f", axis1, axis2)
}

// FormatOKReply renders an Ok reply line.
func FormatOKReply() string { return "Ok" }

// FormatErrorReply renders an Error reply line.
func FormatErrorReply(msg string) string {
	// The payload must stay a single line.
	msg = strings.ReplaceAll(msg, "\n", " ")
	return "Error;" + msg
}
