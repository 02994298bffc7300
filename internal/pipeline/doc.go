// Package pipeline implements the HTML stages of a site build.
//
//   - Nav injection into exported notebook entry pages, located with the
//     x/net/html tokenizer so every other byte is preserved
//   - Markdown preprocessing and goldmark conversion of notebook
//     descriptions for the chooser page, with relative links rebased onto
//     the output directory
//   - Live reload snippet injection for the dev server
//
// File I/O stays in the root nbsite package; everything here works on strings.
package pipeline
