package parser

import (
	"strings"
	"testing"

	"github.com/saviobatista/pointing-sim/internal/geom"
	"github.com/saviobatista/pointing-sim/internal/types"
)

func TestParseTargetInfo(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
		want    *types.TargetInfoMessage
	}{
		{
			name: "valid line",
			line: "1000.0;-250.5;5000.0;0.0;200.0;0.0;-90.0;5000.0",
			want: &types.TargetInfoMessage{
				Position: geom.Point3[geom.Local]{X: 1000, Y: -250.5, Z: 5000},
				Velocity: geom.Vector3[geom.Local]{X: 0, Y: 200, Z: 0},
				Track:    -90,
				Altitude: 5000,
			},
		},
		{
			name: "trailing newline tolerated",
			line: "0.0;0.0;0.0;0.0;0.0;0.0;0.0;0.0\n",
			want: &types.TargetInfoMessage{},
		},
		{
			name:    "too few fields",
			line:    "1.0;2.0;3.0",
			wantErr: true,
		},
		{
			name:    "too many fields",
			line:    "1;2;3;4;5;6;7;8;9",
			wantErr: true,
		},
		{
			name:    "non-numeric field",
			line:    "1.0;2.0;x;4.0;5.0;6.0;7.0;8.0",
			wantErr: true,
		},
		{
			name:    "empty line",
			line:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTargetInfo(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTargetInfo() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("ParseTargetInfo() unexpected error: %v", err)
				return
			}
			if *got != *tt.want {
				t.Errorf("ParseTargetInfo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatTargetInfoRoundTrip(t *testing.T) {
	msg := &types.TargetInfoMessage{
		Position: geom.Point3[geom.Local]{X: 12.3, Y: -4.5, Z: 5000.1},
		Velocity: geom.Vector3[geom.Local]{X: 0.5, Y: 200.0, Z: -1.2},
		Track:    -90,
		Altitude: 5000.1,
	}

	line := FormatTargetInfo(msg)
	if strings.Contains(line, "\n") {
		t.Errorf("FormatTargetInfo() contains newline: %q", line)
	}
	if got := strings.Count(line, ";"); got != 7 {
		t.Errorf("FormatTargetInfo() has %d separators, want 7: %q", got, line)
	}

	back, err := ParseTargetInfo(line)
	if err != nil {
		t.Fatalf("ParseTargetInfo() unexpected error: %v", err)
	}
	if *back != *msg {
		t.Errorf("round trip = %+v, want %+v", back, msg)
	}
}

func TestParseMountRequest(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
		want    *MountRequest
	}{
		{
			name: "get position",
			line: "GetPosition",
			want: &MountRequest{Kind: ReqGetPosition},
		},
		{
			name: "slew",
			line: "Slew;1.0000;-0.5000",
			want: &MountRequest{Kind: ReqSlew, Axis1: 1, Axis2: -0.5},
		},
		{
			name: "stop",
			line: "Stop\n",
			want: &MountRequest{Kind: ReqStop},
		},
		{
			name:    "slew with missing axis",
			line:    "Slew;1.0",
			wantErr: true,
		},
		{
			name:    "slew with garbage axis",
			line:    "Slew;fast;0",
			wantErr: true,
		},
		{
			name:    "unknown verb",
			line:    "Park",
			wantErr: true,
		},
		{
			name:    "empty line",
			line:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMountRequest(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseMountRequest() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("ParseMountRequest() unexpected error: %v", err)
				return
			}
			if *got != *tt.want {
				t.Errorf("ParseMountRequest() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMountRequestRoundTrip(t *testing.T) {
	reqs := []*MountRequest{
		{Kind: ReqGetPosition},
		{Kind: ReqSlew, Axis1: 1.5, Axis2: -2.25},
		{Kind: ReqStop},
	}
	for _, req := range reqs {
		back, err := ParseMountRequest(FormatMountRequest(req))
		if err != nil {
			t.Errorf("round trip of %+v failed: %v", req, err)
			continue
		}
		if *back != *req {
			t.Errorf("round trip = %+v, want %+v", back, req)
		}
	}
}

func TestParseMountReply(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
		want    *MountReply
	}{
		{
			name: "position",
			line: "Position;12.3456;-7.8900",
			want: &MountReply{Kind: ReplyPosition, Axis1: 12.3456, Axis2: -7.89},
		},
		{
			name: "ok",
			line: "Ok",
			want: &MountReply{Kind: ReplyOK},
		},
		{
			name: "error with message",
			line: "Error;something went wrong",
			want: &MountReply{Kind: ReplyError, Message: "something went wrong"},
		},
		{
			name:    "position missing axis",
			line:    "Position;12.0",
			wantErr: true,
		},
		{
			name:    "unknown reply",
			line:    "Maybe",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMountReply(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseMountReply() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("ParseMountReply() unexpected error: %v", err)
				return
			}
			if *got != *tt.want {
				t.Errorf("ParseMountReply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatErrorReplyStaysSingleLine(t *testing.T) {
	line := FormatErrorReply("broken\nrequest")
	if strings.Contains(line, "\n") {
		t.Errorf("FormatErrorReply() contains newline: %q", line)
	}
	reply, err := ParseMountReply(line)
	if err != nil {
		t.Fatalf("ParseMountReply() unexpected error: %v", err)
	}
	if reply.Kind != ReplyError {
		t.Errorf("ParseMountReply() kind = %v, want ReplyError", reply.Kind)
	}
}
