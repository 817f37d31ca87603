package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"outgo/internal/core"
)

const (
	fieldDate = iota
	fieldDescription
	fieldAmount
	fieldCategory
	fieldCount
)

const dateLayout = "2006-01-02"

// form binds the three text inputs plus the key-cycled category. One
// form serves both add and edit; edit mode preloads it from the record.
type form struct {
	date        textinput.Model
	description textinput.Model
	amount      textinput.Model
	category    int // index into core.Categories
	focus       int
}

func newForm() form {
	date := textinput.New()
	date.Placeholder = dateLayout
	date.CharLimit = 10
	date.Width = 12
	date.Prompt = ""

	description := textinput.New()
	description.Placeholder = "What was it for?"
	description.CharLimit = 200
	description.Width = 32
	description.Prompt = ""

	amount := textinput.New()
	amount.CharLimit = 16
	amount.Width = 12
	amount.Prompt = ""

	f := form{
		date:        date,
		description: description,
		amount:      amount,
	}
	f.reset()
	return f
}

// reset returns the form to blank add-mode defaults: empty date and
// description, zero amount, first category.
func (f *form) reset() {
	f.date.SetValue("")
	f.description.SetValue("")
	f.amount.SetValue("0.00")
	f.category = 0
	f.setFocus(fieldDate)
}

// load fills the form from an existing record for editing.
func (f *form) load(e core.Expense) {
	f.date.SetValue(e.Date.Format(dateLayout))
	f.description.SetValue(e.Description)
	f.amount.SetValue(core.FormatAmount(e.Amount))
	f.category = 0
	for i, c := range core.Categories {
		if c == e.Category {
			f.category = i
			break
		}
	}
	f.setFocus(fieldDate)
}

// draft parses the form into a request body. A missing date is a local
// error that blocks submission; nothing is sent to the backend.
func (f *form) draft() (core.Draft, error) {
	dateText := strings.TrimSpace(f.date.Value())
	if dateText == "" {
		return core.Draft{}, core.ErrMissingDate
	}
	t, err := time.Parse(dateLayout, dateText)
	if err != nil {
		return core.Draft{}, fmt.Errorf("invalid date %q: use %s", dateText, dateLayout)
	}
	amount, err := core.ParseAmount(f.amount.Value())
	if err != nil {
		return core.Draft{}, err
	}
	return core.Draft{
		Date:        core.NewDate(t.Year(), int(t.Month()), t.Day()),
		Description: f.description.Value(),
		Amount:      amount,
		Category:    core.Categories[f.category],
	}, nil
}

func (f *form) setFocus(field int) {
	f.focus = field
	f.date.Blur()
	f.description.Blur()
	f.amount.Blur()
	switch field {
	case fieldDate:
		f.date.Focus()
	case fieldDescription:
		f.description.Focus()
	case fieldAmount:
		f.amount.Focus()
	}
}

func (f *form) nextField() { f.setFocus((f.focus + 1) % fieldCount) }
func (f *form) prevField() { f.setFocus((f.focus + fieldCount - 1) % fieldCount) }

func (f *form) cycleCategory(delta int) {
	n := len(core.Categories)
	f.category = (f.category + delta + n) % n
}

// update routes key input to the focused text field.
func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldDate:
		f.date, cmd = f.date.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldAmount:
		f.amount, cmd = f.amount.Update(msg)
	}
	return cmd
}

func (f *form) view(title string, submitting bool) string {
	categoryText := string(core.Categories[f.category])
	if f.focus == fieldCategory {
		categoryText = selectedStyle.Render("< " + categoryText + " >")
	} else {
		categoryText = accentStyle.Render(categoryText)
	}

	rows := []string{
		titleStyle.Render(title),
		labelStyle.Render("Date        ") + f.date.View(),
		labelStyle.Render("Description ") + f.description.View(),
		labelStyle.Render("Amount      ") + f.amount.View(),
		labelStyle.Render("Category    ") + categoryText,
	}
	if submitting {
		rows = append(rows, mutedStyle.Render("saving..."))
	} else {
		rows = append(rows, helpStyle.Render("enter save • esc cancel • tab next field • ←/→ category"))
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}
