package sensor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/banshee-data/bodytrack/internal/body"
)

// wireFrame is the JSON-lines representation of a body.Frame.
type wireFrame struct {
	Seq         uint64     `json:"seq"`
	TimestampNs int64      `json:"timestamp_ns,omitempty"`
	Bodies      []wireBody `json:"bodies"`
}

type wireBody struct {
	ID      uint64                        `json:"id"`
	Tracked bool                          `json:"tracked"`
	Joints  map[body.JointKind][3]float64 `json:"joints,omitempty"`
}

var nullFrame = []byte("null")

// EncodeFrame marshals f as a single JSON line without the trailing newline.
// A nil frame encodes as null.
func EncodeFrame(f *body.Frame) ([]byte, error) {
	if f == nil {
		return append([]byte(nil), nullFrame...), nil
	}
	w := wireFrame{Seq: f.Seq, Bodies: make([]wireBody, 0, len(f.Bodies))}
	if !f.Timestamp.IsZero() {
		w.TimestampNs = f.Timestamp.UnixNano()
	}
	for _, p := range f.Bodies {
		if p == nil {
			continue
		}
		wb := wireBody{ID: p.ID, Tracked: p.Tracked}
		if len(p.Joints) > 0 {
			wb.Joints = make(map[body.JointKind][3]float64, len(p.Joints))
			for k, jt := range p.Joints {
				wb.Joints[k] = [3]float64{jt.Position.X, jt.Position.Y, jt.Position.Z}
			}
		}
		w.Bodies = append(w.Bodies, wb)
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", f.Seq, err)
	}
	return data, nil
}

// DecodeFrame parses a line produced by EncodeFrame. The literal null decodes
// to a nil frame.
func DecodeFrame(data []byte) (*body.Frame, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, nullFrame) {
		return nil, nil
	}
	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return w.frame(), nil
}

func (w *wireFrame) frame() *body.Frame {
	f := &body.Frame{Seq: w.Seq, Bodies: make([]*body.RawPose, 0, len(w.Bodies))}
	if w.TimestampNs != 0 {
		f.Timestamp = time.Unix(0, w.TimestampNs)
	}
	for _, wb := range w.Bodies {
		p := &body.RawPose{ID: wb.ID, Tracked: wb.Tracked, Joints: make(map[body.JointKind]body.Joint, len(wb.Joints))}
		for k, v := range wb.Joints {
			p.Joints[k] = body.Joint{Position: body.Vec3{X: v[0], Y: v[1], Z: v[2]}}
		}
		f.Bodies = append(f.Bodies, p)
	}
	return f
}
