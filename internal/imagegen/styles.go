package imagegen

import (
	"fmt"
	"sort"
)

// Style is one entry in the backend's style table. IDs match the Flux style
// ids the image service expects in style_id.
type Style struct {
	ID       int
	Label    string
	Category string
}

const (
	StyleNone        = 1
	StyleBokeh       = 2
	StyleFood        = 3
	StyleIPhone      = 4
	StyleFilmNoir    = 5
	StyleCubist      = 6
	StylePixel       = 7
	StyleDarkFantasy = 8
	StyleVanGogh     = 9
	StyleCaricature  = 10
	StyleStatue      = 11
	StyleWatercolor  = 12
	StyleOilPainting = 13
	StyleManga       = 14
	StyleSketch      = 15
	StyleComic       = 16
	StyleKawaii      = 17
	StyleChibi       = 18
	StyleDisney      = 19
	StylePixar       = 20
	StyleFunkoPop    = 21
	StyleGhibli      = 68
)

// ValidSizes are the aspect-ratio tokens the generation endpoint accepts.
var ValidSizes = []string{"1:1", "16:9", "9:16", "4:3", "3:4"}

// StyleRegistry resolves style ids to labels and validates requests.
type StyleRegistry struct {
	styles map[int]Style
}

func DefaultStyleRegistry() *StyleRegistry {
	r := &StyleRegistry{styles: make(map[int]Style)}
	for _, s := range []Style{
		{StyleNone, "No Style (photographic)", "Photography"},
		{StyleBokeh, "Bokeh", "Photography"},
		{StyleFood, "Food", "Photography"},
		{StyleIPhone, "iPhone", "Photography"},
		{StyleFilmNoir, "Film Noir", "Photography"},
		{StyleCubist, "Cubist", "Art"},
		{StylePixel, "Pixel Art", "Art"},
		{StyleDarkFantasy, "Dark Fantasy", "Art"},
		{StyleVanGogh, "Van Gogh", "Art"},
		{StyleCaricature, "Caricature", "Art"},
		{StyleStatue, "Statue", "Art"},
		{StyleWatercolor, "Watercolor", "Art"},
		{StyleOilPainting, "Oil Painting", "Art"},
		{StyleGhibli, "Ghibli", "Art"},
		{StyleManga, "Manga", "Cartoon"},
		{StyleSketch, "Sketch", "Cartoon"},
		{StyleComic, "Comic", "Cartoon"},
		{StyleKawaii, "Kawaii", "Cartoon"},
		{StyleChibi, "Chibi", "Cartoon"},
		{StyleDisney, "Disney", "Cartoon"},
		{StylePixar, "Pixar", "Cartoon"},
		{StyleFunkoPop, "Funko Pop", "Cartoon"},
	} {
		r.styles[s.ID] = s
	}
	return r
}

func (r *StyleRegistry) Get(id int) (Style, bool) {
	s, ok := r.styles[id]
	return s, ok
}

// List returns all styles ordered by id.
func (r *StyleRegistry) List() []Style {
	styles := make([]Style, 0, len(r.styles))
	for _, s := range r.styles {
		styles = append(styles, s)
	}
	sort.Slice(styles, func(i, j int) bool { return styles[i].ID < styles[j].ID })
	return styles
}

// Validate checks a generation request against the style table and size
// tokens before it goes on the wire.
func (r *StyleRegistry) Validate(req *GenerateRequest) error {
	if _, ok := r.styles[req.StyleID]; !ok {
		return fmt.Errorf("unknown style id %d", req.StyleID)
	}
	if !ValidSize(req.Size) {
		return fmt.Errorf("invalid size %q: must be one of %v", req.Size, ValidSizes)
	}
	return nil
}

func ValidSize(size string) bool {
	for _, s := range ValidSizes {
		if s == size {
			return true
		}
	}
	return false
}
