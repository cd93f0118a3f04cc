package model

type SpelledNote struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Note     uint8  `json:"note"`
}

type SpellResponse struct {
	Scale  string        `json:"scale"`
	Octave int           `json:"octave"`
	Notes  []SpelledNote `json:"notes"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
