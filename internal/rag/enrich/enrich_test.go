package enrich

import (
	"context"
	"errors"
	"testing"
)

type mockProvider struct {
	complete func(ctx context.Context, system string, user string) (string, error)
}

func (m *mockProvider) Complete(ctx context.Context, system string, user string) (string, error) {
	return m.complete(ctx, system, user)
}

func TestEnrich(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		err      error
		wantOut  string
		wantOk   bool
		rawQuery string
	}{
		{
			name:     "Success",
			reply:    "quarterly revenue growth year over year",
			rawQuery: "rev growth",
			wantOut:  "quarterly revenue growth year over year",
			wantOk:   true,
		},
		{
			name:     "Quotes_Stripped",
			reply:    `"net profit margin"`,
			rawQuery: "margin",
			wantOut:  "net profit margin",
			wantOk:   true,
		},
		{
			name:     "Provider_Error_Falls_Back",
			err:      errors.New("rate limited"),
			rawQuery: "rev growth",
			wantOut:  "rev growth",
			wantOk:   false,
		},
		{
			name:     "Empty_Reply_Falls_Back",
			reply:    "   ",
			rawQuery: "rev growth",
			wantOut:  "rev growth",
			wantOk:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockProvider{
				complete: func(ctx context.Context, system string, user string) (string, error) {
					return tt.reply, tt.err
				},
			}

			out, ok := Enrich(context.Background(), p, tt.rawQuery)
			if out != tt.wantOut {
				t.Errorf("Enrich() = %q, want %q", out, tt.wantOut)
			}
			if ok != tt.wantOk {
				t.Errorf("ok = %v, want %v", ok, tt.wantOk)
			}
		})
	}
}
