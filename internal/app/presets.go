package app

// presets is the static list of transformation requests offered as
// shortcuts. Users can always type a free-form prompt instead.
var presets = []string{
	"Make this dish look like a professional food magazine photo",
	"Plate this dish in an elegant fine-dining style",
	"Give this photo warm, golden-hour restaurant lighting",
	"Place this dish on a rustic wooden table with fresh ingredients around it",
	"Turn this photo into a bright, minimalist social media shot",
}
