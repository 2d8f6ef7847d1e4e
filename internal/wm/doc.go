// Package wm models the window-manager hierarchy recorded in a trace.
//
// A trace is an ordered list of entries. Each entry is an immutable snapshot
// of one or more displays, each the root of a container tree:
//
//	Display
//	  WindowState (StatusBar)            above-app
//	  ActivityTask
//	    Activity (com.android.chrome/.Main)
//	      WindowState (chrome main)      app
//	  WindowState (wallpaper)            below-app
//
// # Container Kinds
//
// Container is a sealed interface. The variants are Display, ActivityTask,
// Activity, WindowState and GenericContainer; callers dispatch on kind with a
// type switch. Children are kept in recorded order, which is z-order from
// front to back: index 0 is the top-most child.
//
// # Sealing
//
// Containers are linked with Attach and then handed to NewEntry, which seals
// the tree. Sealing computes, once:
//
//   - effective visibility (own flag AND parent visibility)
//   - bounds (recorded rectangles, or the union of children for Activity and
//     GenericContainer nodes without rectangles)
//   - window bands (AboveApp, App, BelowApp) and app-window classification
//   - cached views (visible windows, app windows, z-order, ...)
//
// After sealing nothing changes, so entries and traces are safe for
// concurrent readers. Every slice accessor returns a copy.
package wm
