package assets

// Names of the assets the build needs.
const (
	NavTemplate       = "nav"
	NavScriptTemplate = "navscript"
	ChooserTemplate   = "chooser"
	ReloadTemplate    = "reload"
	ChooserStyle      = "chooser"
)

// AssetLoader loads CSS styles and HTML templates by name.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)
}
