package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// OpenInvoiceMsg asks the root model to switch to the form view for one
// invoice. ID zero means a fresh draft.
type OpenInvoiceMsg struct {
	ID int64
}

func OpenInvoice(id int64) tea.Cmd {
	return func() tea.Msg {
		return OpenInvoiceMsg{ID: id}
	}
}

const opTimeout = 10 * time.Second

// OpCtx returns a context with a standard timeout for backend operations.
func OpCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}
