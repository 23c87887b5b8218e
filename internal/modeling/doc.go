// Package modeling turns preprocessed export rows into the relational model:
// contacts, their acquisition source, events, and a per-contact rollup of
// post-acquisition engagement.
//
// Every function is pure and returns fresh slices. Output order follows input
// order so repeated runs over the same export produce identical tables.
//
//	contacts := modeling.BuildContacts(rows)
//	sources := modeling.ExtractAttribution(rows)
//	events := modeling.BuildEvents(rows)
//	result := modeling.Rollup(contacts, sources, events)
package modeling
