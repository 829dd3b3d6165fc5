// Package widgets provides custom Fyne widgets for the TuneStream player.
package widgets

import (
	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// Ensure TrackRow implements the tap interfaces
var (
	_ fyneapp.Tappable          = (*TrackRow)(nil)
	_ fyneapp.SecondaryTappable = (*TrackRow)(nil)
)

// TrackRow is one line of the track list: title on the left, duration on the
// right. A primary tap reports the row index (the list selects it); a
// secondary tap reports the index and position for a context menu.
type TrackRow struct {
	widget.BaseWidget

	title    *widget.Label
	duration *widget.Label
	index    int

	tapped          func(index int)
	secondaryTapped func(index int, pos fyneapp.Position)
}

// NewTrackRow creates an empty row.
func NewTrackRow(tapped func(index int), secondaryTapped func(index int, pos fyneapp.Position)) *TrackRow {
	row := &TrackRow{
		title:           widget.NewLabel(""),
		duration:        widget.NewLabel("00:00"),
		tapped:          tapped,
		secondaryTapped: secondaryTapped,
	}
	row.title.Truncation = fyneapp.TextTruncateEllipsis
	row.ExtendBaseWidget(row)
	return row
}

// CreateRenderer implements fyne.Widget.
func (r *TrackRow) CreateRenderer() fyneapp.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, nil, r.duration, r.title))
}

// Bind shows track at list position index.
func (r *TrackRow) Bind(index int, track domain.Track) {
	r.index = index
	r.title.SetText(track.DisplayName())
	r.duration.SetText(track.DurationLabel)
}

// Index returns the list position the row currently shows.
func (r *TrackRow) Index() int {
	return r.index
}

// Title returns the displayed title text.
func (r *TrackRow) Title() string {
	return r.title.Text
}

// Duration returns the displayed duration text.
func (r *TrackRow) Duration() string {
	return r.duration.Text
}

// Tapped implements the fyne.Tappable interface.
func (r *TrackRow) Tapped(*fyneapp.PointEvent) {
	if r.tapped != nil {
		r.tapped(r.index)
	}
}

// TappedSecondary implements the fyne.SecondaryTappable interface.
// It is called when the user right-clicks (or secondary taps) the row.
func (r *TrackRow) TappedSecondary(pe *fyneapp.PointEvent) {
	if r.secondaryTapped != nil {
		r.secondaryTapped(r.index, pe.AbsolutePosition)
	}
}
