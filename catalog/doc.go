// Package catalog holds the fixed registry of measurement categories and the
// units each one offers.
//
// Every category lists its units in declaration order; that order is what
// "first unit" means everywhere else in the module. Each unit carries a
// factor converting one of it into the category's implicit base unit
// (meters, grams, milliliters, square meters, meters per second). Temperature
// is the exception: its two units are handled by name in package convert and
// their factors are placeholders.
//
// The catalog is read-only process-wide data. Nothing in this package mutates
// after init.
package catalog
