package portfolio

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/osa030/termfolio/internal/ui/styles"
)

const (
	targetHeader = "header"

	sectionHome     = "home"
	sectionAbout    = "about"
	sectionSkills   = "skills"
	sectionProjects = "projects"
	sectionContact  = "contact"
)

// section is one block of the page and where it sits in the viewport content.
type section struct {
	id          string
	title       string
	start       int
	height      int
	cardOffsets []int
}

// visibleRatio returns how much of the section lies in [top, bottom).
// Sections taller than the window count as fully visible when they fill it.
func (s section) visibleRatio(top, bottom int) float64 {
	window := bottom - top
	if window <= 0 || s.height <= 0 {
		return 0
	}
	overlap := min(s.start+s.height, bottom) - max(s.start, top)
	if overlap <= 0 {
		return 0
	}
	return float64(overlap) / float64(min(s.height, window))
}

func cardTarget(i int) string {
	return fmt.Sprintf("project:%d", i)
}

// refresh re-renders the page content and recomputes the section offsets.
func (m *Model) refresh() {
	width := m.contentWidth()
	if width <= 0 {
		m.sections = nil
		m.page.SetContent("")
		return
	}

	type block struct {
		id, title string
		body      string
		cards     []int
	}
	projects, cards := m.renderProjects(width)
	blocks := []block{
		{id: sectionHome, title: "Home", body: m.renderTerminal(width)},
		{id: sectionAbout, title: "About", body: m.renderAbout(width)},
		{id: sectionSkills, title: "Skills", body: m.renderSkills(width)},
		{id: sectionProjects, title: "Projects", body: projects, cards: cards},
		{id: sectionContact, title: "Contact", body: m.renderContact(width)},
	}

	var (
		parts    []string
		sections []section
		line     int
	)
	for _, b := range blocks {
		var rendered string
		titleOffset := 0
		if b.id == sectionHome {
			rendered = b.body + "\n"
		} else {
			title := m.sectionTitle(b.id, b.title)
			rendered = title + "\n\n" + b.body + "\n"
			titleOffset = lipgloss.Height(title) + 1
		}
		h := lipgloss.Height(rendered)
		s := section{id: b.id, title: b.title, start: line, height: h}
		for _, c := range b.cards {
			s.cardOffsets = append(s.cardOffsets, titleOffset+c)
		}
		sections = append(sections, s)
		parts = append(parts, rendered)
		line += h
	}

	m.sections = sections
	m.page.SetContent(strings.Join(parts, "\n"))
}

func (m Model) sectionTitle(id, title string) string {
	text := "// " + strings.ToUpper(title)
	if _, ok := m.glitches[id]; ok {
		return styles.GlitchTitle.Render(glitchText(text))
	}
	return styles.SectionTitle.Render(text)
}

// glitchText swaps every third letter for a block glyph.
func glitchText(s string) string {
	blocks := []rune("░▒▓")
	out := []rune(s)
	for i := range out {
		if i%3 == 1 && out[i] != ' ' {
			out[i] = blocks[i%len(blocks)]
		}
	}
	return string(out)
}

func (m Model) renderTerminal(width int) string {
	inner := max(width-4, 1)
	var b strings.Builder
	prompt := styles.Prompt.Render("$ ")
	for _, l := range m.history {
		b.WriteString(prompt + styles.Command.Render(l.command) + "\n")
		b.WriteString(styles.Response.Render(wordwrap.String(l.response, inner)) + "\n")
	}
	b.WriteString(prompt + styles.Command.Render(m.typing) + styles.Cursor.Render(" "))
	if m.response != "" {
		b.WriteString("\n" + styles.Response.Render(wordwrap.String(m.response, inner)))
	}
	return styles.Terminal.Width(width - 2).Render(b.String())
}

func (m Model) renderAbout(width int) string {
	return styles.SectionBody.Render(wordwrap.String(m.opts.Content.About, width))
}

func (m Model) renderSkills(width int) string {
	nameWidth := 0
	for _, s := range m.opts.Content.Skills {
		nameWidth = max(nameWidth, lipgloss.Width(s.Name))
	}
	bar := m.skillBar
	bar.Width = max(width-nameWidth-7, 4)

	lines := make([]string, 0, len(m.opts.Content.Skills))
	for _, s := range m.opts.Content.Skills {
		level := 0.0
		if m.skillsShown {
			level = float64(s.Level) / 100
		}
		name := styles.SkillName.Width(nameWidth).Render(s.Name)
		lines = append(lines, fmt.Sprintf("%s %s %3d%%", name, bar.ViewAs(level), int(level*100)))
	}
	return strings.Join(lines, "\n")
}

// renderProjects returns the cards and each card's line offset.
func (m Model) renderProjects(width int) (string, []int) {
	var (
		cards   []string
		offsets []int
		line    int
	)
	inner := max(width-4, 1)
	for i, p := range m.opts.Content.Projects {
		style := styles.Card
		if i == m.focusedCard {
			style = styles.CardFocused
		}
		if _, ok := m.glitches[cardTarget(i)]; ok {
			style = styles.CardGlitch
		}

		tags := make([]string, 0, len(p.Tags))
		for _, t := range p.Tags {
			tags = append(tags, styles.Tag.Render(t))
		}
		body := styles.Command.Bold(true).Render(truncate.StringWithTail(p.Title, uint(inner), "…")) + "\n" +
			styles.SectionBody.Render(wordwrap.String(p.Description, inner))
		if len(tags) > 0 {
			body += "\n" + strings.Join(tags, " ")
		}
		card := style.Width(width - 2).Render(body)

		offsets = append(offsets, line)
		line += lipgloss.Height(card)
		cards = append(cards, card)
	}
	return strings.Join(cards, "\n"), offsets
}

func (m Model) renderContact(width int) string {
	labelWidth := 0
	for _, c := range m.opts.Content.Contact {
		labelWidth = max(labelWidth, lipgloss.Width(c.Label))
	}
	lines := make([]string, 0, len(m.opts.Content.Contact))
	for _, c := range m.opts.Content.Contact {
		label := styles.Prompt.Width(labelWidth + 1).Render(c.Label)
		value := truncate.StringWithTail(c.Value, uint(max(width-labelWidth-2, 1)), "…")
		lines = append(lines, label+" "+styles.SectionBody.Render(value))
	}
	return strings.Join(lines, "\n")
}
