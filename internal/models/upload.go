package models

type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StoredFile is what an image store returns: a public URL and a reference
// used for later deletion.
type StoredFile struct {
	URL string `json:"url"`
	Ref string `json:"ref"`
}
