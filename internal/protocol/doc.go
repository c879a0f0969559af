// Package protocol implements the appliance's fixed-length ASCII sub-protocol.
//
// Commands are written to the write characteristic as 19-byte frames: a tag,
// optional comma-separated decimal parameters, then space padding. State changes
// arrive on the read characteristic as 17-byte records with the same layout.
//
// The package is pure: Encode and Decode have no side effects and hold no state.
// Reassembling records from BLE notification chunks lives in package reassembly.
package protocol
