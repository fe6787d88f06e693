// Package domain models the water distribution network shown on the map.
//
// # Data Source
//
// The fixed node and pipeline set describes a municipal water network in the
// Nagpur region (all seed coordinates fall near 21.07N 79.05E). The seed data
// was transcribed from utility records and is loaded as an opaque fixture: it
// contains at least one node whose longitude duplicates its latitude and
// several zero-length pipelines. Those are transcription artifacts in the
// source records, not semantics; the loaders accept them without validation
// and nothing downstream may reject them.
//
// # Coordinates
//
// All coordinates are WGS-84 latitude/longitude pairs. Display and selection
// use fixed 6-decimal formatting (about 0.1m of precision), matching the
// precision the map front end shows in its entry form. No range validation is
// applied; a coordinate only has to parse as a finite float.
//
// # Marker records
//
// The document store keeps markers in a denormalized shape consumed by the
// contamination-analysis services:
//
//	{latitude, longitude, popUp, IsContaminated, IsLeaking, CaseOfProliferation}
//
// The three flags are 0/1 integers. This service never tracks contamination
// state in memory, so every record it produces carries the 0 ("not set")
// sentinel; downstream analysis flips the flags in place.
//
// # Clustering
//
// Marker clustering is a rendering concern, but the thresholds are policy:
// clustering switches off at zoom 18, and cluster icons bucket by size
// (10 or fewer small/green, 20 or fewer medium/yellow, else large/red). The
// policy functions here are pure so the front end and tests share one source
// of truth.
package domain
