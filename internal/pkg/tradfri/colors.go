package tradfri

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// HueSatXY is the gateway representation of a colour for rgb bulbs.
type HueSatXY struct {
	Hue        int `json:"hue"`
	Saturation int `json:"saturation"`
	ColorX     int `json:"colorX"`
	ColorY     int `json:"colorY"`
}

// ColorSpec is a resolved colour: either a colour temperature (Hex) or an rgb colour (HSXY).
type ColorSpec struct {
	Name string
	Hex  string
	HSXY *HueSatXY
}

func (c ColorSpec) IsTemperature() bool {
	return c.HSXY == nil
}

type rgbColor struct {
	name   string
	preset string // hex the gateway reports when the colour was picked from the app
	HueSatXY
}

var colorTemperatures = map[string]string{
	"warm":    "efd275",
	"neutral": "f1e0b5",
	"cold":    "f5faf6",
}

var rgbColors = []rgbColor{
	{"red", "dc4b31", HueSatXY{63828, 65279, 41084, 21159}},
	{"green", "a9d62b", HueSatXY{20673, 65279, 19659, 39108}},
	{"blue", "4a418a", HueSatXY{45333, 65279, 10121, 4098}},
	{"yellow", "d6e44b", HueSatXY{9611, 65279, 28800, 31848}},
	{"pink", "d9337c", HueSatXY{59476, 65279, 31574, 15919}},
	{"purple", "8f2686", HueSatXY{49141, 65279, 13353, 5879}},
	{"orange", "e78834", HueSatXY{4137, 65279, 42596, 26189}},
	{"lightPink", "e8bedd", HueSatXY{62007, 24248, 25850, 20992}},
	{"lightPurple", "c984bb", HueSatXY{55784, 38296, 22616, 15712}},
	{"coldSky", "dcf0f8", HueSatXY{36019, 13748, 20106, 21235}},
	{"coolDaylight", "eaf6fb", HueSatXY{34061, 7299, 20480, 21186}},
}

var rgbColorsByName = lo.SliceToMap(rgbColors, func(c rgbColor) (string, rgbColor) {
	return c.name, c
})

// synonyms are folded to canonical names before any lookup.
var synonyms = map[string]string{
	"kalt":  "cold",
	"rot":   "red",
	"gruen": "green",
	"blau":  "blue",
	"gelb":  "yellow",
	"rosa":  "pink",
	"lila":  "purple",
}

var umlauts = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue")

const (
	colorRandom       = "random"
	colorRandomGerman = "zufall"
)

func normalizeColorName(name string) string {
	name = umlauts.Replace(name)
	if canonical, ok := synonyms[name]; ok {
		return canonical
	}
	return name
}

func isRandomColor(name string) bool {
	return name == colorRandom || name == colorRandomGerman
}

// ColorNames lists every canonical colour name, temperatures first.
func ColorNames() []string {
	names := []string{"warm", "neutral", "cold"}
	for _, c := range rgbColors {
		names = append(names, c.name)
	}
	return names
}

// LookupColor resolves a colour name without the random synonyms.
func LookupColor(name string) (ColorSpec, error) {
	name = normalizeColorName(name)
	if hex, ok := colorTemperatures[name]; ok {
		return ColorSpec{Name: name, Hex: hex}, nil
	}
	if c, ok := rgbColorsByName[name]; ok {
		hsxy := c.HueSatXY
		return ColorSpec{Name: name, HSXY: &hsxy}, nil
	}
	return ColorSpec{}, &UnknownColorError{Color: name}
}

// ColorFields are the colour related fields of a bulb payload.
type ColorFields struct {
	Hex  string
	HSXY *HueSatXY
}

// DecodeColor maps gateway colour fields back to a symbolic name.
// An unknown colour yields an empty name.
func DecodeColor(fields ColorFields) string {
	if fields.Hex != "" && fields.Hex != "0" {
		for name, hex := range colorTemperatures {
			if hex == fields.Hex {
				return name
			}
		}
		if c, ok := lo.Find(rgbColors, func(c rgbColor) bool { return c.preset == fields.Hex }); ok {
			return c.name
		}
	}
	if fields.HSXY != nil {
		if c, ok := lo.Find(rgbColors, func(c rgbColor) bool { return c.HueSatXY == *fields.HSXY }); ok {
			return c.name
		}
	}
	return ""
}

// colorPicker resolves colour names for one client, remembering the last random pick.
type colorPicker struct {
	mu         sync.Mutex
	rnd        *rand.Rand
	lastRandom string
}

func newColorPicker(rnd *rand.Rand) *colorPicker {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &colorPicker{rnd: rnd}
}

func (p *colorPicker) resolve(name string) (ColorSpec, error) {
	if isRandomColor(normalizeColorName(name)) {
		name = p.random()
	}
	return LookupColor(name)
}

// random picks an rgb colour different from the previous pick.
func (p *colorPicker) random() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	candidates := lo.Filter(rgbColors, func(c rgbColor, _ int) bool { return c.name != p.lastRandom })
	p.lastRandom = candidates[p.rnd.IntN(len(candidates))].name
	return p.lastRandom
}
