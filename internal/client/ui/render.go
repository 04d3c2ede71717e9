package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vova4o/gonotes/internal/client/models"
)

const (
	cardWidth    = 28
	cardsPerRow  = 3
	cardLines    = 3
	previewWidth = 40
)

// formatRelativeTime formats an epoch-millisecond timestamp relative to now
func formatRelativeTime(ts int64, now time.Time, lang models.Language) string {
	diff := now.UnixMilli() - ts

	switch {
	case diff < 60_000:
		return txtJustNow.in(lang)
	case diff < 3_600_000:
		return fmt.Sprintf("%dm ago", diff/60_000)
	case diff < 86_400_000:
		return fmt.Sprintf("%dh ago", diff/3_600_000)
	case diff < 604_800_000:
		return fmt.Sprintf("%dd ago", diff/86_400_000)
	default:
		return time.UnixMilli(ts).In(now.Location()).Format("Jan 02, 2006")
	}
}

// oneLine collapses whitespace so multi-line content fits a table cell
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func pinMark(n models.Note) string {
	if n.IsPinned {
		return "*"
	}
	return " "
}

func renderList(w io.Writer, notes []models.Note, now time.Time, lang models.Language) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\tID\t%s\t%s\t%s\t%s\n",
		strings.ToUpper(txtTitle.in(lang)),
		strings.ToUpper(txtContent.in(lang)),
		strings.ToUpper(txtColor.in(lang)),
		strings.ToUpper(txtUpdated.in(lang)))

	for _, n := range notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			pinMark(n),
			n.ID.String(),
			runewidth.Truncate(oneLine(n.Title), previewWidth, "..."),
			runewidth.Truncate(oneLine(n.Content), previewWidth, "..."),
			colorNames[n.Color].in(lang),
			formatRelativeTime(n.Timestamp, now, lang))
	}

	return tw.Flush()
}

// card returns the fixed-width lines of one grid cell
func card(n models.Note, now time.Time, lang models.Language) []string {
	inner := cardWidth - 4
	border := "+" + strings.Repeat("-", cardWidth-2) + "+"

	line := func(s string) string {
		return "| " + runewidth.FillRight(runewidth.Truncate(s, inner, "..."), inner) + " |"
	}

	lines := []string{border, line(pinMark(n) + " " + oneLine(n.Title))}

	// контент переносится по ширине карточки
	wrapped := runewidth.Wrap(oneLine(n.Content), inner)
	body := strings.Split(wrapped, "\n")
	for i := 0; i < cardLines; i++ {
		if i < len(body) {
			lines = append(lines, line(body[i]))
		} else {
			lines = append(lines, line(""))
		}
	}

	meta := fmt.Sprintf("#%s %s %s", n.ID.String(), colorNames[n.Color].in(lang), formatRelativeTime(n.Timestamp, now, lang))
	lines = append(lines, line(meta), border)
	return lines
}

func renderGrid(w io.Writer, notes []models.Note, now time.Time, lang models.Language) error {
	for start := 0; start < len(notes); start += cardsPerRow {
		end := start + cardsPerRow
		if end > len(notes) {
			end = len(notes)
		}

		cards := make([][]string, 0, cardsPerRow)
		for _, n := range notes[start:end] {
			cards = append(cards, card(n, now, lang))
		}

		for row := range cards[0] {
			parts := make([]string, len(cards))
			for i, c := range cards {
				parts[i] = c[row]
			}
			if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderNote(w io.Writer, n models.Note, now time.Time, lang models.Language) {
	fmt.Fprintf(w, "%s %s\n", pinMark(n), n.Title)
	fmt.Fprintf(w, "  ID: %s  %s: %s  %s: %s\n",
		n.ID.String(),
		txtColor.in(lang), colorNames[n.Color].in(lang),
		txtUpdated.in(lang), formatRelativeTime(n.Timestamp, now, lang))
	fmt.Fprintln(w)
	for _, l := range strings.Split(n.Content, "\n") {
		fmt.Fprintln(w, "  "+l)
	}
}
