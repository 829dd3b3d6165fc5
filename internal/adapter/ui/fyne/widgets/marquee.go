package widgets

// marqueeGap separates the end of the text from its start while scrolling.
const marqueeGap = "    "

// Marquee scrolls text that does not fit in width runes, one rune per Step.
// Text that fits is returned unchanged. Not safe for concurrent use.
type Marquee struct {
	runes []rune
	width int
}

// NewMarquee creates a marquee for text shown in width runes.
func NewMarquee(text string, width int) *Marquee {
	m := &Marquee{width: width}
	m.SetText(text)
	return m
}

// SetText replaces the text and restarts from its beginning.
func (m *Marquee) SetText(text string) {
	m.runes = []rune(text)
	if !m.Fits() {
		m.runes = append(m.runes, []rune(marqueeGap)...)
	}
}

// Fits reports whether the text is short enough to show without scrolling.
func (m *Marquee) Fits() bool {
	return len(m.runes) <= m.width
}

// Text returns the current frame.
func (m *Marquee) Text() string {
	return string(m.runes)
}

// Step rotates the text by one rune and returns the new frame.
func (m *Marquee) Step() string {
	if m.Fits() || len(m.runes) == 0 {
		return m.Text()
	}
	m.runes = append(m.runes[1:], m.runes[0])
	return m.Text()
}
