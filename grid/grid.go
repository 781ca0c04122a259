package grid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annazecevic/catalog-service/logger"
	"github.com/annazecevic/catalog-service/validation"
	"github.com/google/uuid"
)

type CellState int

const (
	Viewing CellState = iota
	Editing
	Committed
	Cancelled
)

func (s CellState) String() string {
	switch s {
	case Editing:
		return "editing"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	default:
		return "viewing"
	}
}

type Editor int

const (
	TextEditor Editor = iota
	DateEditor
)

const (
	DisplayDateLayout = "02/01/2006"
	EditorDateLayout  = "2006-01-02"
	InvalidDate       = "Invalid Date"
)

var (
	ErrUnknownCell = errors.New("grid: unknown cell")
	ErrReadOnly    = errors.New("grid: column is not editable")
	ErrNotEditing  = errors.New("grid: no cell is being edited")
)

type Column struct {
	Field    string
	Title    string
	Editor   Editor
	Editable bool
}

// Row is one line of the grid. Key is local and stable; ID is the server
// identifier and stays empty until the row has been created remotely.
type Row struct {
	Key    string
	ID     string
	Values map[string]any
}

// Syncer sends rows to the server.
type Syncer interface {
	Create(ctx context.Context, values map[string]any) (string, error)
	Update(ctx context.Context, id string, values map[string]any) error
}

type cellRef struct {
	row   string
	field string
}

// Grid models an editable table of one entity kind. Like the UI it stands
// for, it is meant to be driven from a single goroutine.
type Grid struct {
	kind    string
	columns []Column
	rows    []*Row
	syncer  Syncer
	history History
	log     *logger.Logger

	selected *cellRef
	editing  *cellRef
	states   map[cellRef]CellState
}

func New(kind string, columns []Column, syncer Syncer, log *logger.Logger) *Grid {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Grid{
		kind:    kind,
		columns: columns,
		syncer:  syncer,
		log:     log,
		states:  make(map[cellRef]CellState),
	}
}

// Load replaces the grid contents with records as returned by a list
// request. Date columns are converted to the display format.
func (g *Grid) Load(records []map[string]any) {
	g.rows = nil
	g.history = History{}
	g.selected, g.editing = nil, nil
	g.states = make(map[cellRef]CellState)

	for _, rec := range records {
		row := &Row{Key: uuid.NewString(), Values: make(map[string]any, len(rec))}
		for k, v := range rec {
			row.Values[k] = v
		}
		if id, ok := rec["id"].(string); ok {
			row.ID = id
		}
		for _, col := range g.columns {
			if col.Editor == DateEditor {
				row.Values[col.Field] = displayDate(row.Values[col.Field])
			}
		}
		g.rows = append(g.rows, row)
	}
}

func (g *Grid) Rows() []*Row { return g.rows }

func (g *Grid) Row(key string) (*Row, bool) {
	for _, r := range g.rows {
		if r.Key == key {
			return r, true
		}
	}
	return nil, false
}

// AddRow appends an empty row. Nothing is sent until one of its cells is
// committed.
func (g *Grid) AddRow() *Row {
	row := &Row{Key: uuid.NewString(), Values: make(map[string]any)}
	g.rows = append(g.rows, row)
	return row
}

// Display is the text shown in a cell.
func (g *Grid) Display(rowKey, field string) (string, error) {
	row, _, err := g.cell(rowKey, field)
	if err != nil {
		return "", err
	}
	return text(row.Values[field]), nil
}

func (g *Grid) State(rowKey, field string) CellState {
	return g.states[cellRef{rowKey, field}]
}

// Activate selects a cell. A single activation never starts an edit.
func (g *Grid) Activate(rowKey, field string) error {
	if _, _, err := g.cell(rowKey, field); err != nil {
		return err
	}
	g.selected = &cellRef{rowKey, field}
	return nil
}

// DoubleActivate opens the editor on a cell and returns the value the
// editor starts with. An edit left open elsewhere is cancelled.
func (g *Grid) DoubleActivate(rowKey, field string) (string, error) {
	row, col, err := g.cell(rowKey, field)
	if err != nil {
		return "", err
	}
	if !col.Editable {
		return "", ErrReadOnly
	}
	if g.editing != nil {
		g.states[*g.editing] = Cancelled
	}

	ref := cellRef{rowKey, field}
	g.selected = &ref
	g.editing = &ref
	g.states[ref] = Editing

	current := text(row.Values[field])
	if col.Editor == DateEditor {
		return editorDate(current), nil
	}
	return current, nil
}

// Cancel closes the open editor without touching the value.
func (g *Grid) Cancel() error {
	if g.editing == nil {
		return ErrNotEditing
	}
	g.states[*g.editing] = Cancelled
	g.editing = nil
	return nil
}

// Commit closes the open editor with value. An unchanged value cancels the
// edit. Otherwise the cell is updated locally, the edit is recorded in the
// history and the whole row is sent to the server. A failed sync is logged
// and returned; the local value is kept.
func (g *Grid) Commit(ctx context.Context, value string) error {
	if g.editing == nil {
		return ErrNotEditing
	}
	ref := *g.editing
	g.editing = nil

	row, col, err := g.cell(ref.row, ref.field)
	if err != nil {
		return err
	}

	next := value
	if col.Editor == DateEditor {
		next = fromEditorDate(value)
	}
	before, had := row.Values[ref.field]
	if text(before) == next {
		g.states[ref] = Cancelled
		return nil
	}

	row.Values[ref.field] = next
	if !had {
		before = nil
	}
	g.history.Push(Change{RowKey: ref.row, Field: ref.field, Before: before, After: next})
	g.states[ref] = Committed

	return g.sync(ctx, row, ref.field)
}

// Undo restores the previous value of the most recent edit. The server is
// not told.
func (g *Grid) Undo() bool {
	c, ok := g.history.Undo()
	if ok {
		g.set(c.RowKey, c.Field, c.Before)
	}
	return ok
}

// Redo reapplies the most recently undone edit locally.
func (g *Grid) Redo() bool {
	c, ok := g.history.Redo()
	if ok {
		g.set(c.RowKey, c.Field, c.After)
	}
	return ok
}

func (g *Grid) CanUndo() bool { return g.history.CanUndo() }
func (g *Grid) CanRedo() bool { return g.history.CanRedo() }

func (g *Grid) set(rowKey, field string, v any) {
	row, ok := g.Row(rowKey)
	if !ok {
		return
	}
	if v == nil {
		delete(row.Values, field)
		return
	}
	row.Values[field] = v
}

func (g *Grid) sync(ctx context.Context, row *Row, field string) error {
	values := g.payload(row)

	var err error
	if row.ID == "" {
		var id string
		id, err = g.syncer.Create(ctx, values)
		if err == nil {
			row.ID = id
			row.Values["id"] = id
		}
	} else {
		err = g.syncer.Update(ctx, row.ID, values)
	}
	if err != nil {
		g.log.Error(logger.EventGridSyncFailure, "Grid edit was not saved", logger.Fields(
			"kind", g.kind,
			"id", row.ID,
			"field", field,
			"error", err.Error(),
		))
		return fmt.Errorf("grid: sync %s: %w", g.kind, err)
	}
	return nil
}

// payload is the row as the server expects it, with dates back in ISO form.
func (g *Grid) payload(row *Row) map[string]any {
	out := make(map[string]any, len(row.Values))
	for k, v := range row.Values {
		out[k] = v
	}
	for _, col := range g.columns {
		if col.Editor != DateEditor {
			continue
		}
		if s, ok := out[col.Field].(string); ok {
			out[col.Field] = isoDate(s)
		}
	}
	return out
}

func (g *Grid) cell(rowKey, field string) (*Row, Column, error) {
	row, ok := g.Row(rowKey)
	if !ok {
		return nil, Column{}, ErrUnknownCell
	}
	for _, col := range g.columns {
		if col.Field == field {
			return row, col, nil
		}
	}
	return nil, Column{}, ErrUnknownCell
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// displayDate turns a stored ISO date or timestamp into dd/mm/yyyy.
func displayDate(v any) any {
	s, ok := v.(string)
	if !ok || s == "" {
		return v
	}
	t := validation.ParseDate(s)
	if t == nil {
		return InvalidDate
	}
	return t.Format(DisplayDateLayout)
}

func editorDate(display string) string {
	if display == "" {
		return ""
	}
	t, err := time.Parse(DisplayDateLayout, display)
	if err != nil {
		return InvalidDate
	}
	return t.Format(EditorDateLayout)
}

func fromEditorDate(v string) string {
	if v == "" {
		return ""
	}
	t, err := time.Parse(EditorDateLayout, v)
	if err != nil {
		return InvalidDate
	}
	return t.Format(DisplayDateLayout)
}

func isoDate(display string) string {
	if display == "" || display == InvalidDate {
		return display
	}
	t, err := time.Parse(DisplayDateLayout, display)
	if err != nil {
		return InvalidDate
	}
	return t.Format(EditorDateLayout)
}
