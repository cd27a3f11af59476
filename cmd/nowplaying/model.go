package main

import (
	"time"

	"github.com/charmbracelet/bubbletea"
)

// SongData holds the current track metadata
type SongData struct {
	Status    string
	Title     string
	Artist    string
	Album     string
	TotalTime string
	AppName   string
}

// model is the Bubble Tea model for the TUI application
type model struct {
	songData  SongData
	color     string
	width     int
	height    int
	noSession bool
	session   Session

	// For smooth position interpolation
	lastPosition     float64   // Last known position in seconds
	lastPositionTime time.Time // When we fetched that position
	duration         float64   // Track duration in seconds
	isPlaying        bool      // Whether song is currently playing

	// Album artwork support
	artworkEncoded string // Kitty protocol-encoded artwork for display
	supportsKitty  bool   // Whether terminal supports Kitty graphics
	lastTrackID    string // Track ID for caching artwork (title+artist)

	// Text scrolling state
	scrollOffset int // Current scroll position for text animation
	scrollPause  int // Pause counter at start/end of scroll
	scrollTick   int // Tick counter for slowing scroll speed

	// UI state
	showHelp bool // Whether to show help text
}

// UI refresh tick - fires every 100ms for smooth rendering
type tickMsg time.Time

// Data fetch tick - fires every second to get fresh metadata
type fetchMsg time.Time

// Result of reading the session snapshot
type songDataMsg struct {
	title    string
	artist   string
	album    string
	status   string
	appName  string
	duration float64
	position float64
	playing  bool
	trackID  string
	artwork  string // Kitty-encoded artwork
	color    string // Extracted dominant color
	empty    bool   // No session observed
}

// Schedule next UI refresh tick
func tickCmd() tea.Cmd {
	cfg := config.Get()
	return tea.Tick(time.Duration(cfg.Timing.UIRefreshMs)*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Schedule next data fetch
func fetchCmd() tea.Cmd {
	cfg := config.Get()
	return tea.Tick(time.Duration(cfg.Timing.DataFetchMs)*time.Millisecond, func(t time.Time) tea.Msg {
		return fetchMsg(t)
	})
}

// Fetch song data in background (doesn't block UI)
func (m model) fetchSongData() tea.Cmd {
	return func() tea.Msg {
		cfg := config.Get()

		info := m.session.GetInfo()
		if info == nil || info.TrackID() == "" {
			return songDataMsg{empty: true}
		}

		msg := songDataMsg{trackID: info.TrackID()}
		if info.Title != nil {
			msg.title = *info.Title
		}
		if info.Artist != nil {
			msg.artist = *info.Artist
		}
		if info.Album != nil {
			msg.album = *info.Album
		}
		if info.BundleName != nil {
			msg.appName = *info.BundleName
		}
		if info.Duration != nil {
			msg.duration = *info.Duration
		}
		if pos, ok := info.Position(); ok {
			msg.position = pos
		}

		msg.status = "Stopped"
		if info.IsPlaying != nil {
			msg.playing = *info.IsPlaying
			if msg.playing {
				msg.status = "Playing"
			} else {
				msg.status = "Paused"
			}
		}

		// Encode artwork only when the track changed; re-encoding the
		// same cover every second is wasted work.
		if m.supportsKitty && cfg.Artwork.Enabled && info.AlbumCover != nil && msg.trackID != m.lastTrackID {
			shouldExtractColor := cfg.UI.ColorMode == "auto"
			func() {
				defer func() {
					if r := recover(); r != nil {
						// Silently ignore artwork processing panics
						msg.artwork = ""
						msg.color = ""
					}
				}()
				color, encoded, err := processArtwork(info.AlbumCover, shouldExtractColor)
				if err == nil {
					if shouldExtractColor && color != "" {
						msg.color = color
					}
					msg.artwork = encoded
				}
			}()
		}

		return msg
	}
}

// Calculate current position with smooth interpolation
func (m model) getCurrentPosition() float64 {
	// If paused, return last known position
	if !m.isPlaying {
		return m.lastPosition
	}

	// If playing, interpolate based on elapsed time since last fetch
	elapsed := time.Since(m.lastPositionTime).Seconds()
	currentPos := m.lastPosition + elapsed

	// Clamp to duration
	if m.duration > 0 && currentPos > m.duration {
		currentPos = m.duration
	}

	return currentPos
}

func (m model) Init() tea.Cmd {
	// Start both the UI refresh loop and data fetch loop
	return tea.Batch(
		tickCmd(),
		fetchCmd(),
		m.fetchSongData(),
		watchConfigCmd(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "p":
			m.session.Toggle()
			// Immediately fetch fresh state after control action
			return m, m.fetchSongData()
		case "n":
			m.session.Next()
			return m, m.fetchSongData()
		case "b":
			m.session.Previous()
			return m, m.fetchSongData()
		case "a":
			// Toggle artwork on/off
			cfg := config.Get()
			cfg.Artwork.Enabled = !cfg.Artwork.Enabled
			config.Set(cfg)
			if !cfg.Artwork.Enabled {
				m.artworkEncoded = ""
			} else if m.supportsKitty {
				m.lastTrackID = "" // Clear track ID to force artwork fetch
				return m, m.fetchSongData()
			}
			return m, nil
		case "?":
			// Toggle help text
			m.showHelp = !m.showHelp
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case configReloadMsg:
		// Config file changed, update color and artwork setting
		cfg := config.Get()
		if cfg.UI.ColorMode == "manual" {
			m.color = cfg.UI.Color
		}

		if !cfg.Artwork.Enabled && m.artworkEncoded != "" {
			// Delete the image from terminal and clear the encoded data
			m.artworkEncoded = ""
			m.lastTrackID = "" // Clear track ID so artwork can be re-fetched later
		} else if cfg.Artwork.Enabled && m.artworkEncoded == "" && m.supportsKitty {
			// Artwork was just enabled, fetch it for the current song
			m.lastTrackID = ""
			return m, tea.Batch(watchConfigCmd(), m.fetchSongData())
		}
		// Continue watching for more config changes
		return m, watchConfigCmd()

	case tickMsg:
		// UI refresh tick - advance scroll animation slowly
		m.scrollTick++
		cfg := config.Get()

		if m.scrollPause > 0 {
			m.scrollPause--
		} else if m.scrollTick%3 == 0 { // Scroll every 3rd tick (300ms)
			m.scrollOffset++

			// Check if we've completed a full loop - pause at the end
			maxLen := cfg.Text.MaxLengthWithArt
			if !m.supportsKitty || !cfg.Artwork.Enabled {
				maxLen = cfg.Text.MaxLengthNoArt
			}

			// Calculate the longest text length to determine loop point
			longestLen := len([]rune(m.songData.Title))
			if l := len([]rune(m.songData.Artist)); l > longestLen {
				longestLen = l
			}
			if l := len([]rune(m.songData.Album)); l > longestLen {
				longestLen = l
			}

			if longestLen > maxLen {
				loopPoint := longestLen + 5 // Text length + separator length
				if m.scrollOffset >= loopPoint {
					m.scrollOffset = 0
					m.scrollPause = 30 // Pause for 3 seconds when looping back
				}
			}
		}
		// Schedule next tick immediately for consistent timing
		return m, tickCmd()

	case fetchMsg:
		// Data fetch tick - get fresh data and schedule next fetch
		return m, tea.Batch(
			fetchCmd(),
			m.fetchSongData(),
		)

	case songDataMsg:
		cfg := config.Get()
		if msg.empty {
			m.noSession = true
			// Clear artwork when nothing is playing
			m.artworkEncoded = ""
			m.lastTrackID = ""
			return m, nil
		}
		m.noSession = false

		// Reset scroll when the track changes
		if msg.trackID != m.lastTrackID {
			m.scrollOffset = 0
			m.scrollPause = 30 // Pause at start for 3 seconds
			m.scrollTick = 0
		}

		m.songData.Title = msg.title
		m.songData.Artist = msg.artist
		m.songData.Album = msg.album
		m.songData.Status = msg.status
		m.songData.AppName = msg.appName
		m.songData.TotalTime = formatTime(int64(msg.duration))

		// Update color if we extracted one in auto mode
		// Don't fall back to manual on every fetch - only when track changes
		if cfg.UI.ColorMode == "auto" && msg.color != "" {
			m.color = msg.color
		}

		// Update tracking info for smooth interpolation
		m.lastPosition = msg.position
		m.lastPositionTime = time.Now()
		m.duration = msg.duration
		m.isPlaying = msg.playing

		// Update artwork if changed
		if msg.artwork != "" {
			m.artworkEncoded = msg.artwork
			m.lastTrackID = msg.trackID
		}
		return m, nil
	}

	return m, nil
}
