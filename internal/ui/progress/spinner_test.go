package progress

import (
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestSpinnerModel_ViewShowsMessage(t *testing.T) {
	t.Parallel()

	m := newSpinnerModel("Fetching ApexClass items...")
	content := fmt.Sprint(m.View().Content)
	if !strings.Contains(content, "Fetching ApexClass items...") {
		t.Errorf("View().Content = %q, want the message rendered", content)
	}
}

func TestSpinnerModel_KeyPressQuits(t *testing.T) {
	t.Parallel()

	m := newSpinnerModel("Retrieving...")
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'x'})
	if cmd == nil {
		t.Fatal("expected a quit command on key press")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("key press should quit the spinner program")
	}
}

func TestSpinner_StopBeforeStart(t *testing.T) {
	t.Parallel()

	// Stop on a never-started spinner must not block or panic.
	NewSpinner("idle").Stop()
}
