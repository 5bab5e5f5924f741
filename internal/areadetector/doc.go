// Package areadetector drives EPICS area-detector cameras and their
// file-writer plugins.
//
// Three pieces cooperate around one constraint of the areaDetector
// framework: a file-writer plugin must receive at least one frame after an
// IOC restart before its internal buffers are sized ("priming"), or the
// first real acquisition is dropped.
//
//   - Primed inspects camera and plugin array metadata to decide whether a
//     frame has ever passed through the plugin.
//   - Prime pushes exactly one frame through an unprimed plugin, then puts
//     every touched PV back the way it found it, in reverse write order.
//   - FileStore stages a capture with EPICS-authoritative file naming: the
//     file name, path and template are read from the IOC at stage time and
//     the resulting full file name is reconstructed client-side for
//     resource/datum document generation.
//
// Staging follows the Unstaged -> Staging -> Staged -> Unstaging lifecycle
// from the device package; re-staging without an unstage is rejected.
package areadetector
