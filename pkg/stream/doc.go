/*
Package stream implements Meteor's two wire dialects (spec.md S4.6, S4.7,
S6.1):

TokenStream folds over a MeteorEngine's cursor: "ns=" and "ctx=" tokens
move the cursor, "ctl:<verb>=<target>" invokes a control command, a bare
"key=value" stores at the cursor, and an explicit "ctx:ns:key=value"
stores at that address without moving the cursor.

MeteorStream requires explicit addressing and rejects "ns="/"ctx="
control tokens outright (ctl:* remains legal); meteors are separated by
the literal delimiter ":;:". Within one meteor, the first data token
must carry an explicit "ctx:ns:key" address, later bare "key=value"
tokens inherit it, and every later explicit address must match it unless
lenient addressing was requested.

Both dialects split on token/meteor boundaries with pkg/escape's
quote- and bracket-aware scanner, so a quoted value may contain ';',
':', or '=' without breaking the grammar.
*/
package stream
