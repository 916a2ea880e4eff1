// Package display renders table state for the terminal front end.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/tencount/internal/deck"
	"github.com/lox/tencount/internal/game"
	"github.com/lox/tencount/internal/session"
)

// Styles contains styling for table display
type Styles struct {
	Header    lipgloss.Style
	SubHeader lipgloss.Style
	Action    lipgloss.Style
	Winner    lipgloss.Style
	Card      lipgloss.Style
	Danger    lipgloss.Style
	Pot       lipgloss.Style
	You       lipgloss.Style
	Info      lipgloss.Style
}

// NewStyles creates the default style set
func NewStyles() *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 2).
			Bold(true),
		SubHeader: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		Action: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#74B9FF")),
		Winner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		Card: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		Pot: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		You: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")),
	}
}

// TableDisplay renders room snapshots and round events
type TableDisplay struct {
	styles *Styles
	out    io.Writer
}

// New creates a display writing to out
func New(out io.Writer) *TableDisplay {
	return &TableDisplay{styles: NewStyles(), out: out}
}

// FormatMoney renders a minor-unit amount as dollars.
func FormatMoney(amount int) string {
	if amount%100 == 0 {
		return fmt.Sprintf("$%d", amount/100)
	}
	return fmt.Sprintf("$%d.%02d", amount/100, amount%100)
}

// FormatCards renders a hand like [0 1 2 3].
func FormatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = fmt.Sprintf("%d", int(c))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// ShowRoundHeader prints the round banner
func (d *TableDisplay) ShowRoundHeader(round int) {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, d.styles.Header.Render(fmt.Sprintf("*** ROUND %d ***", round)))
}

// ShowTable prints the shared table state: seats, balances, bets and the
// running total.
func (d *TableDisplay) ShowTable(snap session.Snapshot) {
	for _, p := range snap.Players {
		marker := ""
		if p.ID == snap.SelfID {
			marker = " " + d.styles.You.Render("(You)")
		} else if p.Bot {
			marker = " " + d.styles.Info.Render("(AI)")
		}
		status := ""
		if p.Status != game.StatusActive {
			status = " " + d.styles.Info.Render("[spectating]")
		}
		turn := " "
		if p.ID == snap.TurnPlayerID {
			turn = d.styles.Action.Render(">")
		}

		line := fmt.Sprintf("%s Seat %d: %s%s%s - %s", turn, p.Seat, p.Name, marker, status, FormatMoney(p.Money))
		if p.Bet > 0 {
			line += fmt.Sprintf(" (bet %s", FormatMoney(p.Bet))
			if p.Finalized {
				line += ", locked"
			}
			line += ")"
		}
		fmt.Fprintln(d.out, line)
	}

	fmt.Fprintf(d.out, "Pot: %s   Table total: %s\n",
		d.styles.Pot.Render(FormatMoney(snap.Pot)),
		d.styles.Danger.Render(fmt.Sprintf("%d / %d", snap.TableTotal, game.BustThreshold)))
}

// ShowHand prints the viewer's cards
func (d *TableDisplay) ShowHand(snap session.Snapshot) {
	fmt.Fprintf(d.out, "Your hand: %s\n", d.styles.Card.Render(FormatCards(snap.Hand)))
}

// ShowAction narrates one applied table action
func (d *TableDisplay) ShowAction(name, action string, amount int) {
	switch action {
	case "bet":
		fmt.Fprintf(d.out, "%s\n", d.styles.Action.Render(fmt.Sprintf("%s bets %s", name, FormatMoney(amount))))
	case "call":
		fmt.Fprintf(d.out, "%s\n", d.styles.Action.Render(fmt.Sprintf("%s calls %s", name, FormatMoney(amount))))
	case "all_in":
		fmt.Fprintf(d.out, "%s\n", d.styles.Danger.Render(fmt.Sprintf("%s goes all in for %s", name, FormatMoney(amount))))
	case "finalize":
		fmt.Fprintf(d.out, "%s\n", d.styles.Info.Render(fmt.Sprintf("%s locks in %s", name, FormatMoney(amount))))
	}
}

// ShowCardPlayed narrates a card play and the new table total
func (d *TableDisplay) ShowCardPlayed(name string, card deck.Card, total int) {
	style := d.styles.Action
	if total >= game.BustThreshold-2 {
		style = d.styles.Danger
	}
	fmt.Fprintf(d.out, "%s\n", style.Render(fmt.Sprintf("%s plays %d, table at %d", name, int(card), total)))
}

// ShowPositionChoice narrates the highest bettor's decision
func (d *TableDisplay) ShowPositionChoice(name string, pos game.Position) {
	fmt.Fprintf(d.out, "%s\n", d.styles.SubHeader.Render(fmt.Sprintf("%s bet the most and chooses to play %s", name, pos)))
}

// ShowRoundResult prints the bust and the pot split
func (d *TableDisplay) ShowRoundResult(res *game.RoundResult, nameOf func(string) string) {
	fmt.Fprintln(d.out)
	if res.BustedID != "" {
		fmt.Fprintln(d.out, d.styles.Danger.Render(fmt.Sprintf("%s busts the table!", nameOf(res.BustedID))))
	} else {
		fmt.Fprintln(d.out, d.styles.Info.Render("Hands exhausted, nobody busts"))
	}
	for _, share := range res.Shares {
		fmt.Fprintf(d.out, "%s wins %s\n", nameOf(share.PlayerID), d.styles.Pot.Render(FormatMoney(share.Amount)))
	}
}

// ShowGameOver prints the final standing
func (d *TableDisplay) ShowGameOver(winner string, money int) {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, d.styles.Winner.Render(fmt.Sprintf("*** %s WINS THE GAME WITH %s ***", winner, FormatMoney(money))))
}

// ShowStandings prints every seat's final balance in seat order
func (d *TableDisplay) ShowStandings(snap session.Snapshot) {
	fmt.Fprintln(d.out, d.styles.SubHeader.Render("Final standings"))
	for _, p := range snap.Players {
		fmt.Fprintf(d.out, "  %s: %s\n", p.Name, FormatMoney(p.Money))
	}
}
