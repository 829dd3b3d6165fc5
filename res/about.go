package res

// AboutContent contains the Markdown content for the About dialog.
// This is maintained separately for easy updates.
const AboutContent = `A streaming music player built with Go and Fyne.

**Features:**
- Search the catalogue or play recommendations
- Shuffle with or without repeats
- Gapless-feeling skips: the next track is fetched while the current one plays
- Cross-platform support
`
