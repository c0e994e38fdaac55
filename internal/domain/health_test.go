package domain

import "testing"

func TestAdjustHealthScore(t *testing.T) {
	many := []string{"a", "b", "c", "d", "e", "f"}

	tests := []struct {
		name string
		base int
		git  *GitState
		want int
	}{
		{
			name: "nil git state leaves baseline",
			base: 73,
			git:  nil,
			want: 73,
		},
		{
			name: "clean tree earns bonus",
			base: 90,
			git:  &GitState{IsGitRepo: true, Branch: "main"},
			want: 95,
		},
		{
			name: "clean bonus clamped at maximum",
			base: 100,
			git:  &GitState{IsGitRepo: true, Branch: "main"},
			want: 100,
		},
		{
			name: "dirty tree penalized",
			base: 100,
			git:  &GitState{IsGitRepo: true, Branch: "main", IsDirty: true},
			want: 90,
		},
		{
			name: "six untracked files penalized",
			base: 100,
			git:  &GitState{IsGitRepo: true, Branch: "main", UntrackedFiles: many},
			want: 95,
		},
		{
			name: "five untracked files under the penalty limit",
			base: 100,
			git:  &GitState{IsGitRepo: true, Branch: "main", UntrackedFiles: many[:5]},
			want: 100,
		},
		{
			name: "dirty and many untracked stack",
			base: 100,
			git:  &GitState{IsGitRepo: true, Branch: "main", IsDirty: true, UntrackedFiles: many},
			want: 85,
		},
		{
			name: "score clamped at minimum",
			base: 5,
			git:  &GitState{IsGitRepo: true, Branch: "main", IsDirty: true, UntrackedFiles: many},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AdjustHealthScore(tt.base, tt.git); got != tt.want {
				t.Errorf("AdjustHealthScore(%d) = %d, want %d", tt.base, got, tt.want)
			}
		})
	}
}
