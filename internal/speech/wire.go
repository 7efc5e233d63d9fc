// Package speech drives one round of real-time speech-to-text conversion
// against the iFlytek IAT recognizer: signed-URL authentication, paced audio
// framing over a WebSocket, and reconciliation of incremental results into a
// final transcript.
package speech

import "strings"

// Frame status values on the outbound data messages.
const (
	statusFirstFrame  = 0
	statusContinue    = 1
	statusEndOfStream = 2
)

// statusFinal marks the last inbound result message.
const statusFinal = 2

type frameCommon struct {
	AppID string `json:"app_id"`
}

type frameBusiness struct {
	Language string `json:"language"`
	Domain   string `json:"domain"`
	Accent   string `json:"accent"`
	Vinfo    int    `json:"vinfo"`
	Dwa      string `json:"dwa"`
}

type frameData struct {
	Status   int    `json:"status"`
	Format   string `json:"format"`
	Encoding string `json:"encoding"`
	Audio    string `json:"audio"`
}

// framePayload is one outbound message. Common and business parameters ride
// only on the first frame.
type framePayload struct {
	Common   *frameCommon   `json:"common,omitempty"`
	Business *frameBusiness `json:"business,omitempty"`
	Data     frameData      `json:"data"`
}

type resultWord struct {
	W string `json:"w"`
}

type resultSegment struct {
	CW []resultWord `json:"cw"`
}

type messageResult struct {
	SN  *int            `json:"sn"`
	PGS string          `json:"pgs"`
	RG  []int           `json:"rg"`
	WS  []resultSegment `json:"ws"`
}

type messageData struct {
	Status int            `json:"status"`
	Result *messageResult `json:"result"`
}

// serverMessage is one inbound recognizer message. Code 0 is success;
// anything else is a remote failure carrying a human-readable message.
type serverMessage struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    *messageData `json:"data"`
}

// segmentText concatenates every sub-word fragment of every word segment.
func segmentText(segments []resultSegment) string {
	var b strings.Builder
	for _, seg := range segments {
		for _, w := range seg.CW {
			b.WriteString(w.W)
		}
	}
	return b.String()
}
