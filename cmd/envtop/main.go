// Command envtop is a terminal dashboard for a running envmond: it polls
// the backend's /data endpoint and renders current readings, trend
// indicators, and sparkline history. When the backend is unreachable it
// shows simulated data so the layout stays alive.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/envmon/internal/client"
	"github.com/luki/envmon/internal/dashboard"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "envmond base URL")
	interval := flag.Duration("interval", 2*time.Second, "poll interval")
	flag.Parse()

	c := client.New(*addr, *interval)

	p := tea.NewProgram(
		dashboard.New(c, *interval),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
