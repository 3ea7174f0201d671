/*
Package surlex translates surlex patterns to regular expressions.

Surlex is a compact notation for URL-like path templates. A pattern is
literal text with named captures, optional segments, wildcards and macro
shorthands, and it is translated to a regular expression with equivalent
named capture groups:

	/<product>/<option>.html         /(?P<product>.+)/(?P<option>.+)\.html
	/things/edit/(<slug>/)           /things/edit/((?P<slug>.+)/)?
	/blog/<year:Y>.html              /blog/(?P<year>\d{4})\.html
	/<=\d{5}$>                       /\d{5}$
	/files/*.png                     /files/.*\.png

# Syntax

	<name>          capture one or more characters of any kind
	<name=regexp>   capture with an explicit regular expression
	<name:macro>    capture with the pattern of a macro
	<=regexp>       insert a regular expression without capturing
	<:macro>        insert a macro pattern without capturing
	*               match anything, including nothing
	( ... )         optional group, can be nested
	\c              the character c, literally

Inside a tag, only the closing > needs to be escaped, other backslash
sequences are passed to the regular expression unchanged.

# Macros

Macros are resolved from the instance scoped overrides of a Surlex first,
then from the global macro table, and finally from the built-in macros. See
the macros package for the built-ins. Application code can register macros
globally before translating patterns that use them:

	surlex.RegisterMacro("lang", "[a-z]{2}")
	rx, err := surlex.ToRegex("/<lang:lang>/articles/<id:#>")

# Matching

A translated pattern is matched with the regexp package, anchored at the
beginning of the subject:

	captures, ok, err := surlex.Match("/articles/<year>/<slug>/", "/articles/2008/this-article/")
	// captures: map[slug:this-article year:2008], ok: true

Captures of optional groups that did not participate in the match are not
included in the result.

# Routing

The requestmatch package matches HTTP requests against definitions with
surlex paths, and the predicates/surlexpath package provides a Skipper
predicate and filter, that can be loaded as a plugin built from
cmd/surlexplugin.
*/
package surlex
