package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/cascade/internal/ipc"
)

// FormatState renders the one-line state of a session
func FormatState(st *ipc.StatusResponse) string {
	switch {
	case st == nil || !st.Running:
		return InactiveIndicator + " " + ErrorStyle.Render("stopped")
	case st.Inhibited:
		return InhibitedIndicator + " " + WarningStyle.Render(fmt.Sprintf("inhibited by client %d", st.Owner))
	default:
		return ActiveIndicator + " " + SuccessStyle.Render("running")
	}
}

// RenderStatus renders a session status as a boxed table
func RenderStatus(st *ipc.StatusResponse) string {
	if st == nil {
		return BoxStyle.Render(FormatState(nil))
	}

	active := "none"
	if st.ActiveWindow != 0 {
		active = fmt.Sprintf("#%d", st.ActiveWindow)
	}

	rows := [][2]string{
		{"State", FormatState(st)},
		{"Uptime", formatUptime(time.Duration(st.UptimeSeconds * float64(time.Second)))},
		{"Engine", st.Engine},
		{"Clients", fmt.Sprintf("%d", st.Clients)},
		{"Resources", fmt.Sprintf("%d", st.Resources)},
		{"Windows", fmt.Sprintf("%d (active %s)", st.Windows, active)},
		{"Launcher", "ctrl+alt+" + st.LauncherKey},
		{"Stop", "ctrl+alt+" + st.StopKey},
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("cascade"))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render(row[0]))
		b.WriteString(TextStyle.Render(row[1]))
	}
	return BoxStyle.Render(b.String())
}

func formatUptime(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Truncate(time.Second).String()
}
