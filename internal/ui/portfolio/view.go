package portfolio

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/osa030/termfolio/internal/ui/styles"
)

const (
	headerHeight = 2
	footerHeight = 2
)

// View renders the page.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	rain := strings.Split(m.rain.View(), "\n")
	if m.loading {
		return overlay(rain, m.renderLoader(), m.width, m.height)
	}

	body := m.page.View()
	if m.menuOpen {
		bodyLines := strings.Split(body, "\n")
		menu := m.renderMenu()
		x := max(m.contentWidth()-lipgloss.Width(menu), 0)
		body = strings.Join(place(bodyLines, menu, x, 0, m.contentWidth()), "\n")
	}

	page := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatus(),
		m.help.ShortHelpView(m.keys.ShortHelp()),
	)
	return withGutter(strings.Split(page, "\n"), rain, m.contentWidth(), m.width, m.height)
}

func (m Model) renderHeader() string {
	width := m.contentWidth()
	style := styles.Header
	if m.scrolled {
		style = styles.HeaderScrolled
	}

	owner := m.opts.Content.Owner
	if _, ok := m.glitches[targetHeader]; ok {
		owner = styles.GlitchTitle.Render(glitchText(owner))
	}
	left := owner + " // " + m.opts.Content.Tagline

	status := styles.AudioOn.Render("AUDIO: ON")
	if m.muted {
		status = styles.AudioOff.Render("AUDIO: OFF")
	}

	inner := max(width-style.GetHorizontalFrameSize(), 0)
	gap := inner - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		left = ansi.Truncate(left, max(inner-lipgloss.Width(status)-1, 0), "…")
		gap = 1
	}
	return style.Width(width).Render(left + strings.Repeat(" ", gap) + status)
}

func (m Model) renderStatus() string {
	switch {
	case m.alert != "":
		return styles.Alert.Render(ansi.Truncate(m.alert, m.contentWidth(), "…"))
	case m.toast != "":
		return styles.Toast.Render(m.toast)
	default:
		return ""
	}
}

func (m Model) renderMenu() string {
	lines := make([]string, 0, len(m.sections))
	for i, s := range m.sections {
		item := fmt.Sprintf(" %s ", strings.ToUpper(s.title))
		if i == m.menuIndex {
			lines = append(lines, styles.MenuItemSelected.Render(item))
		} else {
			lines = append(lines, styles.MenuItem.Render(item))
		}
	}
	return styles.Menu.Render(strings.Join(lines, "\n"))
}

func (m Model) renderLoader() string {
	width := min(max(m.width-12, 10), 50)
	bar := m.loaderBar
	bar.Width = width

	text := ""
	if len(m.opts.Loader.Messages) > 0 {
		text = m.opts.Loader.Messages[m.loaderText]
	}
	return styles.Overlay.Render(strings.Join([]string{
		text,
		"",
		bar.ViewAs(m.progress),
		fmt.Sprintf("%d%% COMPLETE", int(m.progress*100)),
	}, "\n"))
}

// overlay centers box over the background lines.
func overlay(bg []string, box string, width, height int) string {
	x := max((width-lipgloss.Width(box))/2, 0)
	y := max((height-lipgloss.Height(box))/2, 0)
	return strings.Join(place(fit(bg, height), box, x, y, width), "\n")
}

// place writes box over lines starting at column x and row y.
func place(lines []string, box string, x, y, width int) []string {
	out := append([]string(nil), lines...)
	for i, row := range strings.Split(box, "\n") {
		at := y + i
		if at >= len(out) {
			break
		}
		base := padRight(out[at], width)
		rowWidth := ansi.StringWidth(row)
		out[at] = ansi.Truncate(base, x, "") + row + ansi.Cut(base, x+rowWidth, width)
	}
	return out
}

// withGutter pads each page line to the content width and fills the rest of
// the screen with rain.
func withGutter(page, rain []string, contentWidth, width, height int) string {
	page = fit(page, height)
	rain = fit(rain, height)
	out := make([]string, height)
	for i := range out {
		line := ansi.Truncate(padRight(page[i], contentWidth), contentWidth, "")
		if width > contentWidth {
			line += ansi.Cut(padRight(rain[i], width), contentWidth, width)
		}
		out[i] = line
	}
	return strings.Join(out, "\n")
}

// fit trims or pads lines to exactly n entries.
func fit(lines []string, n int) []string {
	if len(lines) >= n {
		return lines[:n]
	}
	out := make([]string, n)
	copy(out, lines)
	return out
}

func padRight(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
