package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    DocType
	}{
		{"standards dir", "workspace/standards/naming.md", "", DocTypeStandard},
		{"standards marker in segment", "workspace/team-standards/review.md", "", DocTypeStandard},
		{"incident with 5-whys header", "workspace/incidents/outage.md", "# Outage\n\n## 5 Whys\n\n1. ...", DocTypeIncident},
		{"incident with 5 whys header", "workspace/incidents/outage.md", "### 5 whys analysis", DocTypeIncident},
		{"incident filename token", "workspace/incidents/incident_login.md", "no analysis yet", DocTypeIncident},
		{"incident dir without markers is a task", "workspace/incidents/follow-up.md", "check the logs", DocTypeTask},
		{"projects dir", "workspace/projects/apollo.md", "", DocTypeProject},
		{"plain document", "workspace/notes/meeting.md", "", DocTypeDocument},
		{"case-insensitive markers", "Workspace/Standards/NAMING.md", "", DocTypeStandard},
		{"windows separators", `workspace\projects\apollo.md`, "", DocTypeProject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path, tt.content))
		})
	}
}

func TestClassifyOrderStandardsBeatIncidents(t *testing.T) {
	// A path under both markers resolves by rule order, not specificity.
	got := Classify("workspace/standards/incidents/handling.md", "## 5 Whys")
	assert.Equal(t, DocTypeStandard, got)
}

func TestClassifyBodyMentionAlone(t *testing.T) {
	// 5-whys in the body only matters under an incidents marker.
	got := Classify("workspace/notes/retro.md", "## 5 Whys\n...")
	assert.Equal(t, DocTypeDocument, got)
}

func TestPathHasSegment(t *testing.T) {
	assert.True(t, pathHasSegment("a/standards/b.md", "standards"))
	assert.True(t, pathHasSegment("a/old-standards/b.md", "standards"))
	assert.False(t, pathHasSegment("a/b/standard.md", "standards"))
}
