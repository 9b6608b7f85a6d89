// Package insight implements the two language-model collaborators used by
// UnitAI:
//
//   - Context: given a value and two unit names, returns exactly two
//     real-world comparisons and one fun fact.
//   - Lookup: maps a free-text query ("height of Big Ben") to a category,
//     a pair of catalog unit ids and an estimated value.
//
// Both calls request JSON that matches a schema, strip stray code fences,
// probe the payload with gjson, validate it against the schema and finally
// decode it. Any failure surfaces as ErrInsightsFailed or ErrLookupFailed;
// no partial result is ever returned. Without a configured model both calls
// fail with ErrMissingCredential before doing any I/O.
package insight
