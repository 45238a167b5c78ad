package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorts_Validate(t *testing.T) {
	full := func() *Ports {
		return &Ports{
			Ingest:    &mockIngest{},
			Chat:      &mockChat{},
			Retrieval: &mockRetrieval{},
			Sessions:  &mockSessions{},
		}
	}

	tests := []struct {
		name  string
		strip func(*Ports)
		want  error
	}{
		{"complete", func(*Ports) {}, nil},
		{"no ingest", func(p *Ports) { p.Ingest = nil }, ErrMissingIngestService},
		{"no chat", func(p *Ports) { p.Chat = nil }, ErrMissingChatService},
		{"no retrieval", func(p *Ports) { p.Retrieval = nil }, ErrMissingRetrievalService},
		{"no sessions", func(p *Ports) { p.Sessions = nil }, ErrMissingSessionService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := full()
			tt.strip(p)
			assert.Equal(t, tt.want, p.Validate())
		})
	}
}
