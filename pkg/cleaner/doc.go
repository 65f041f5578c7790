// Package cleaner provides the cleaning step run on raw SVG text before it is
// rewritten into a component module.
//
// Every cleaner satisfies one blocking contract, Cleaner.Clean, which may
// take as long as it needs (external processes, remote services) and honours
// context cancellation. Functions returning a string, a Deferred, a
// <-chan string or an untyped value are adapted to that contract by FromFunc;
// a value that turns out to be neither a string nor a deferred string fails
// with ErrInvalidResult.
//
// Available cleaners:
//
//   - Default: line-oriented regular-expression stripping of the XML
//     declaration, DOCTYPE, namespaced attributes and comments
//   - Minify: github.com/tdewolff/minify/v2 SVG minification followed by Default
//   - XML: github.com/beevik/etree tree cleaning with the same removals
//   - Exec: an external command reading SVG on stdin and writing it to stdout
//   - Chain: several cleaners applied in order
package cleaner
