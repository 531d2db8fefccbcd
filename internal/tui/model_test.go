//nolint:testpackage // Test needs access to unexported fields
package tui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/progrock"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// queueSource replays a fixed list of updates, then reports EOF.
type queueSource struct {
	updates []*progrock.StatusUpdate
}

func (q *queueSource) Read() (*progrock.StatusUpdate, error) {
	if len(q.updates) == 0 {
		return nil, io.EOF
	}
	next := q.updates[0]
	q.updates = q.updates[1:]
	return next, nil
}

func errPtr(s string) *string { return &s }

func TestModel_StageLifecycle(t *testing.T) {
	m := NewModel(&queueSource{})

	m.processUpdate(&progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{{Id: "1", Name: "download manifests"}},
	})
	require.Len(t, m.stages, 1)
	assert.Equal(t, statusRunning, m.stages[0].Status)

	m.processUpdate(&progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{{Id: "1", Name: "download manifests", Completed: timestamppb.Now()}},
	})
	require.Len(t, m.stages, 1)
	assert.Equal(t, statusCompleted, m.stages[0].Status)
}

func TestModel_StageFailure(t *testing.T) {
	m := NewModel(&queueSource{})

	m.processUpdate(&progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{{
			Id:        "1",
			Name:      "resolve dependencies",
			Completed: timestamppb.Now(),
			Error:     errPtr("unable to resolve dependencies"),
		}},
	})
	assert.Equal(t, statusFailed, m.stages[0].Status)
}

func TestModel_LogTailBounded(t *testing.T) {
	m := NewModel(&queueSource{})

	m.processUpdate(&progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{{Id: "dl", Name: "download packages"}},
	})
	for i := 0; i < 10; i++ {
		m.processUpdate(&progrock.StatusUpdate{
			Logs: []*progrock.VertexLog{{Vertex: "dl", Data: []byte("[9/24] glibc\n")}},
		})
	}
	assert.Len(t, m.stages[0].tail, logTailLines)
}

func TestModel_ViewShowsRunningTailOnly(t *testing.T) {
	m := NewModel(&queueSource{})

	m.processUpdate(&progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{
			{Id: "1", Name: "download manifests", Completed: timestamppb.Now()},
			{Id: "2", Name: "download packages"},
		},
		Logs: []*progrock.VertexLog{
			{Vertex: "1", Data: []byte("stable_amd64_Packages\n")},
			{Vertex: "2", Data: []byte("[1/24] glibc\n")},
		},
	})

	view := m.View()
	assert.Contains(t, view, "download manifests")
	assert.Contains(t, view, "download packages")
	assert.Contains(t, view, "[1/24] glibc")
	assert.NotContains(t, view, "stable_amd64_Packages", "finished stages hide their output")
}

func TestModel_TapeEndQuits(t *testing.T) {
	m := NewModel(&queueSource{})

	_, cmd := m.Update(MsgTapeEnded{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_ReadsUntilEOF(t *testing.T) {
	src := &queueSource{updates: []*progrock.StatusUpdate{
		{Vertexes: []*progrock.Vertex{{Id: "1", Name: "stage 1: populate target"}}},
	}}
	m := NewModel(src)

	msg := WaitForTape(src)()
	update, ok := msg.(MsgTapeUpdate)
	require.True(t, ok)
	model, cmd := m.Update(update)
	require.NotNil(t, cmd)
	m = model.(*Model)
	assert.True(t, strings.Contains(m.View(), "stage 1: populate target"))

	msg = WaitForTape(src)()
	_, ended := msg.(MsgTapeEnded)
	assert.True(t, ended)
}
