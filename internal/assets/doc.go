// Package assets provides the HTML templates and CSS used by the build:
// the navigation bar, its resilience script, the chooser page and the dev
// server reload snippet.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - go:embed defaults shipped with the binary
//	    ├── FilesystemLoader  - overrides from a directory on disk
//	    └── AssetResolver     - custom first, embedded fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── chooser.css
//	└── templates/
//	    ├── nav.html
//	    ├── navscript.html
//	    ├── chooser.html
//	    └── reload.html
//
// Asset names are validated so they cannot escape basePath.
package assets
