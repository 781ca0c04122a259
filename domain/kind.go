package domain

// Kind names as they appear in routes and payload keys.
const (
	KindArtist  = "artist"
	KindGenre   = "genre"
	KindRelease = "release"
	KindCopy    = "copy"
	KindStyle   = "style"
	KindTrack   = "track"
	KindCrate   = "crate"
	KindCover   = "cover"
)
