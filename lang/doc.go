// Package lang implements the sigil scripting language.
//
// A sigil program is a sequence of lines. A line starting with # is a
// comment. A line holding exactly one directive, written §name or
// §name[args], runs that directive. Every other line is text: directive
// calls and $variable references inside it are expanded and the result is
// written to the output.
//
//	# greet everyone
//	§var[names; 3]
//	§for[i; 0; $names]
//	  §if[§isEven[$i]]
//	Hello §upper[guest] number $i
//	  §else
//	§log[odd one out: $i]
//	  §endif
//	§endfor
//
// # Execution
//
// [Interpreter.Run] first splices every §require[path] line with the
// content of the named file, then validates that each §if, §while and §for
// has a matching §endif, §endwhile or §endfor. Only a valid program runs.
//
// The engine steps through the statements with a program counter. Blocks
// are located by depth-counted scanning of the flat statement list. Loops
// are bounded: while loops stop after [DefaultWhileLimit] iterations and
// for loops after [DefaultForLimit], reporting [ErrRunawayLoop].
//
// # Directives
//
// Each directive is a [Handler] held in a [Registry]. Handlers read their
// arguments through [Args], which resolves nested calls and variables once,
// splits arguments at top-level semicolons and strips quotes. Handlers are
// fail-soft: an error is recorded as a [Diagnostic] and the handler's safe
// value ("0", "" or "false") is used in its place.
//
// A [Plugin] adds handlers to a registry. Plugins outrank built-in
// directives; among plugins, the higher priority wins and equal priorities
// go to the plugin loaded last.
//
// # Conditions
//
// Conditions of §if, §elseif and §while may use comparison, boolean and
// arithmetic operators as well as contains, startsWith and endsWith.
// Variables and nested call results are bound as typed operands, numbers
// when they parse as numbers. A condition that fails to evaluate is false.
package lang
