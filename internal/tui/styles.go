package tui

import "github.com/charmbracelet/lipgloss"

var (
	Rose   = lipgloss.Color("#E84A5F")
	Peach  = lipgloss.Color("#FF847C")
	Mint   = lipgloss.Color("#2A9D8F")
	Slate  = lipgloss.Color("#5C6B73")
	Cloud  = lipgloss.Color("#F4F5F6")
	Golden = lipgloss.Color("#F4A261")
)

type Styles struct {
	Title     lipgloss.Style
	Card      lipgloss.Style
	CardLike  lipgloss.Style
	CardPass  lipgloss.Style
	Name      lipgloss.Style
	Muted     lipgloss.Style
	Tag       lipgloss.Style
	Stamp     lipgloss.Style
	Match     lipgloss.Style
	Upgrade   lipgloss.Style
	Status    lipgloss.Style
	Help      lipgloss.Style
	ErrorText lipgloss.Style
}

func DefaultStyles() Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Slate).
		Padding(1, 2).
		Width(44)

	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(Rose),
		Card:      card,
		CardLike:  card.BorderForeground(Mint),
		CardPass:  card.BorderForeground(Rose),
		Name:      lipgloss.NewStyle().Bold(true).Foreground(Cloud),
		Muted:     lipgloss.NewStyle().Foreground(Slate),
		Tag:       lipgloss.NewStyle().Foreground(Peach),
		Stamp:     lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.NormalBorder()),
		Match:     lipgloss.NewStyle().Bold(true).Foreground(Rose).Border(lipgloss.DoubleBorder()).BorderForeground(Rose).Padding(1, 4),
		Upgrade:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Golden).Padding(1, 2),
		Status:    lipgloss.NewStyle().Foreground(Mint),
		Help:      lipgloss.NewStyle().Foreground(Slate).Italic(true),
		ErrorText: lipgloss.NewStyle().Foreground(Rose),
	}
}
