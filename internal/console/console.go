// Package console is the terminal admin dashboard. It drives the service
// REST API through the apiclient: pick a store, browse its collections,
// and create, edit, or delete records with the same validation and
// integrity guidance the API reports.
package console

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brightmill/storefront/internal/apiclient"
)

// Run starts the console against the given service client and blocks until
// the operator quits.
func Run(client *apiclient.Client) error {
	_, err := tea.NewProgram(NewApp(client), tea.WithAltScreen()).Run()
	return err
}
