// SPDX-License-Identifier: MPL-2.0

// Package commandtree indexes command keys from several sources into one tree
// and classifies requested keys against it.
//
// Keys are slash-delimited and case-sensitive ("scaffold/cloud/aws"). Every
// intermediate segment of a command key is a group, so a tree built only from
// command entries is still navigable.
package commandtree
