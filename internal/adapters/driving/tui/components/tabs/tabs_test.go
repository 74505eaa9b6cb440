package tabs

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

func doc(title string, phase domain.Phase) domain.Document {
	return domain.Document{Path: "src/" + title, Title: title, Phase: phase}
}

func TestBar_Label(t *testing.T) {
	b := NewBar(nil)

	assert.Equal(t, "a.go", b.Label(doc("a.go", domain.PhaseReady)))
	assert.Equal(t, "a.go ⋯", b.Label(doc("a.go", domain.PhaseLoading)))
	assert.Equal(t, "a.go ⋯", b.Label(doc("a.go", domain.PhaseForceRendering)))
	assert.Equal(t, "a.go !", b.Label(doc("a.go", domain.PhaseFailed)))

	forced := doc("a.bin", domain.PhaseReady)
	forced.Forced = true
	assert.Equal(t, "a.bin *", b.Label(forced))
}

func TestBar_LabelTruncatesWideTitles(t *testing.T) {
	b := NewBar(nil)

	long := strings.Repeat("x", 40) + ".go"
	label := b.Label(doc(long, domain.PhaseReady))
	assert.Equal(t, DefaultMaxTitle, lipgloss.Width(label))
	assert.True(t, strings.HasSuffix(label, "…"))

	cjk := strings.Repeat("文", 20)
	assert.LessOrEqual(t, lipgloss.Width(b.Label(doc(cjk, domain.PhaseReady))), DefaultMaxTitle)
}

func TestBar_ViewEmpty(t *testing.T) {
	assert.Contains(t, NewBar(nil).View(nil, 0), "No open files")
}

func TestBar_ViewShowsAllWhenTheyFit(t *testing.T) {
	b := NewBar(nil)
	b.SetWidth(200)

	view := b.View([]domain.Document{doc("a.go", domain.PhaseReady), doc("b.go", domain.PhaseReady)}, 1)
	assert.Contains(t, view, "a.go")
	assert.Contains(t, view, "b.go")
	assert.NotContains(t, view, "…")
}

func TestBar_ViewKeepsActiveVisible(t *testing.T) {
	b := NewBar(nil)
	b.SetWidth(40)

	var docs []domain.Document
	for i := 0; i < 20; i++ {
		docs = append(docs, doc(fmt.Sprintf("file%02d.go", i), domain.PhaseReady))
	}

	for _, active := range []int{0, 10, 19} {
		view := b.View(docs, active)
		assert.Contains(t, view, docs[active].Title)
		assert.LessOrEqual(t, lipgloss.Width(view), 40)
	}

	assert.NotContains(t, b.View(docs, 19), "file00.go")
	assert.NotContains(t, b.View(docs, 0), "file19.go")
}
