package settlement

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	now := time.Date(2026, 1, 16, 4, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		g    GameState
		want string
	}{
		{
			name: "status says final",
			g:    GameState{Status: "Final"},
			want: StateFinal,
		},
		{
			name: "status final in overtime",
			g:    GameState{Status: "Final/OT"},
			want: StateFinal,
		},
		{
			name: "complete scoresheet without final status",
			g: GameState{
				HomeScore: 112, AwayScore: 104, Period: 4, Clock: "0:00",
				Status: "4th Qtr", Tipoff: now.Add(-time.Hour),
			},
			want: StateFinal,
		},
		{
			name: "fourth quarter clock running",
			g: GameState{
				HomeScore: 98, AwayScore: 95, Period: 4, Clock: "2:30",
				Status: "4th Qtr", Tipoff: now.Add(-2 * time.Hour),
			},
			want: StateInProgress,
		},
		{
			name: "one side scoreless is not complete",
			g: GameState{
				HomeScore: 112, AwayScore: 0, Period: 4, Clock: "0:00",
				Tipoff: now.Add(-2 * time.Hour),
			},
			want: StateInProgress,
		},
		{
			name: "elapsed time past buffer",
			g: GameState{
				Status: "stuck feed", Tipoff: now.Add(-(estimatedDuration + settlementBuffer + time.Second)),
			},
			want: StateFinal,
		},
		{
			name: "elapsed but inside buffer",
			g: GameState{
				Status: "stuck feed", Tipoff: now.Add(-(estimatedDuration + 5*time.Minute)),
			},
			want: StateInProgress,
		},
		{
			name: "before tipoff",
			g:    GameState{Status: "scheduled", Tipoff: now.Add(30 * time.Minute)},
			want: StatePreTip,
		},
		{
			name: "no tipoff with activity",
			g:    GameState{HomeScore: 12, Period: 1},
			want: StateInProgress,
		},
		{
			name: "no tipoff and idle",
			g:    GameState{Status: "scheduled"},
			want: StatePreTip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.g, now); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScoresAgree(t *testing.T) {
	tests := []struct {
		name string
		a, b GameState
		want bool
	}{
		{
			name: "matching scores",
			a:    GameState{HomeScore: 120, AwayScore: 110},
			b:    GameState{HomeScore: 120, AwayScore: 110},
			want: true,
		},
		{
			name: "mismatched scores",
			a:    GameState{HomeScore: 120, AwayScore: 110},
			b:    GameState{HomeScore: 118, AwayScore: 110},
			want: false,
		},
		{
			name: "second source silent",
			a:    GameState{HomeScore: 120, AwayScore: 110},
			b:    GameState{},
			want: true,
		},
		{
			name: "first source silent",
			a:    GameState{},
			b:    GameState{HomeScore: 120, AwayScore: 110},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoresAgree(tt.a, tt.b); got != tt.want {
				t.Errorf("ScoresAgree() = %v, want %v", got, tt.want)
			}
		})
	}
}
