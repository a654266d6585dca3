package domain

type TemplateKey string

const (
	TemplateSimple  TemplateKey = "simple"
	TemplateModern  TemplateKey = "modern"
	TemplatePremium TemplateKey = "premium"
)

// DefaultTemplate is used for new drafts unless configured otherwise
var DefaultTemplate = TemplateSimple

type HeaderAlign string

const (
	HeaderLeft   HeaderAlign = "left"
	HeaderCenter HeaderAlign = "center"
	HeaderSplit  HeaderAlign = "split"
)

// Template is static styling consumed only by the renderer
type Template struct {
	Key         TemplateKey
	Label       string
	Description string

	Header   HeaderAlign
	Bordered bool

	AccentColor     string
	TextColor       string
	BackgroundColor string // empty for white

	HeadingSize float64
	BodySize    float64

	ShowLogo          bool
	ShowQR            bool
	ShowTableHeaderBg bool
}

var templates = map[TemplateKey]Template{
	TemplateSimple: {
		Key:               TemplateSimple,
		Label:             "Simple",
		Description:       "Clean and minimal invoice with no heavy styling",
		Header:            HeaderLeft,
		AccentColor:       "#000000",
		TextColor:         "#111827",
		HeadingSize:       18,
		BodySize:          9,
		ShowLogo:          true,
		ShowQR:            false,
		ShowTableHeaderBg: false,
	},
	TemplateModern: {
		Key:               TemplateModern,
		Label:             "Modern",
		Description:       "Modern layout with accent colors and structured sections",
		Header:            HeaderSplit,
		Bordered:          true,
		AccentColor:       "#0284c7",
		TextColor:         "#0f172a",
		HeadingSize:       20,
		BodySize:          9,
		ShowLogo:          true,
		ShowQR:            true,
		ShowTableHeaderBg: true,
	},
	TemplatePremium: {
		Key:               TemplatePremium,
		Label:             "Premium",
		Description:       "Centered header with a tinted page",
		Header:            HeaderCenter,
		Bordered:          true,
		AccentColor:       "#7c3aed",
		TextColor:         "#1f2937",
		BackgroundColor:   "#faf5ff",
		HeadingSize:       22,
		BodySize:          10,
		ShowLogo:          true,
		ShowQR:            true,
		ShowTableHeaderBg: true,
	},
}

// GetTemplate returns the template for key, or the default template
func GetTemplate(key TemplateKey) Template {
	if t, ok := templates[key]; ok {
		return t
	}
	return templates[DefaultTemplate]
}

// IsValidTemplate reports whether key names a known template
func IsValidTemplate(key TemplateKey) bool {
	_, ok := templates[key]
	return ok
}
