package game

import "testing"

func TestAssignStartNode(t *testing.T) {
	starts := []Node{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}}

	tests := []struct {
		name  string
		teams []Team
		want  string
	}{
		{"no teams picks first", nil, "s1"},
		{"least used wins", []Team{{StartNodeID: "s1"}, {StartNodeID: "s2"}}, "s3"},
		{"tie broken by first found", []Team{{StartNodeID: "s2"}}, "s1"},
		{"unassigned teams ignored", []Team{{StartNodeID: ""}, {StartNodeID: "s1"}}, "s2"},
		{"skew minimized", []Team{
			{StartNodeID: "s1"}, {StartNodeID: "s1"}, {StartNodeID: "s2"}, {StartNodeID: "s3"},
		}, "s2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := AssignStartNode(starts, tc.teams); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestAssignStartNodeEmpty(t *testing.T) {
	if got := AssignStartNode(nil, nil); got != "" {
		t.Errorf("expected empty assignment, got %s", got)
	}
}
