/* Command goclink runs programs written in clink, a language with one datum.

clink programs manipulate a single stack of symbols, each either True,
written '!', or False, written '?'. The stack never runs out: below whatever
has been pushed onto it lies an endless run of '?'. Every program is built
from five operations:

	!   push True
	?   push False
	:   pop a symbol; if True run what comes before the ':', otherwise what
	    comes after it
	@   read one input byte, pushing its eight bits most significant first
	#   pop eight symbols and write them as one output byte

Nothing else is built in. Named functions compose those operations, and a
function that calls itself is the only way to loop:

	// drain pops '!' symbols until it pops a '?'
	drain drain:;

Each level of an expression holds at most one ':', and parentheses make a
nested level, so that "(?:!)" is a complete match in the middle of a body:

	not ?:!;
	_ ! (?:!) not ?!??!???#;

A program starts at the function named '_' and ends when nothing remains to
be evaluated. Recursion depth is limited only by memory: pending work lives
on a heap allocated continuation stack, and a call in tail position does not
grow it at all.

Programs may span many files. A file may begin with imports, each a '!'
followed by a dotted module path, that merge other modules' functions into
one namespace:

	!std.bool
	!std.io
	_ ! not (:) cat;

The module a.b.c lives in the file a/b/c.clink under a module root. Module
roots are the program file's directory (or -root), then any listed by a
clink.yml project manifest, then the built in std modules. Without a program
file argument, goclink looks for clink.yml in the working directory or its
parents, and runs the module named by its main key.

Usage:

	goclink [flags] [program.clink]

Input is read from stdin unless -input names files; output goes to stdout,
and errors, along with any -trace or -dump logging, go to stderr.
*/
package main
