// Package compose implements the template composition stages.
//
// The three stages run against collections of layered documents:
//
//  1. [FanOut] clones a baseline collection into one collection per variant.
//  2. [MergeGroup] duplicates a template group onto the top of every document
//     in a variant collection.
//  3. [RelabelByFilename] rewrites the text layers of a named group to each
//     document's own filename.
//
// Each stage processes documents one at a time, in collection order. A
// failure on one document is recorded in the stage's [Outcome] and the stage
// moves on; only problems with the collection itself are returned as errors.
package compose
