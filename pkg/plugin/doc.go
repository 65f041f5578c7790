// Package plugin turns SVG files into function-component modules for JSX
// bundlers.
//
// A Plugin decides with include and exclude glob patterns whether a file is
// handled, cleans the SVG text, forwards the component props onto the root
// svg element and emits a module of the form
//
//	import { h } from 'preact';
//	export default ( props ) => (<svg width="10" {...props}>...</svg>);
//
// The import line is produced either from a JSX library name (WithJSX,
// WithFactory, WithDefaultImport) or from raw statements (WithImports). The
// two forms cannot be combined.
//
// Example:
//
//	p, err := plugin.New(
//		plugin.WithInclude("icons/**"),
//		plugin.WithExclude("icons/private/**"),
//		plugin.WithJSX("react"),
//	)
//	if err != nil {
//		return err
//	}
//	res, err := p.Transform(ctx, content, "src/icons/logo.svg")
//
// Transform returns a nil result and a nil error for files the plugin does not
// handle. Plugins are immutable and safe for concurrent use; ESBuild adapts
// one to an esbuild on-load plugin.
package plugin
