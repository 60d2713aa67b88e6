// Package fuzztests houses Go fuzz harnesses that exercise the binary
// surfaces of the toolchain: the msgpack module container decoder and
// the SPIR-V word-stream decoder. Its goal is to smoke test robustness
// and guard against panics on arbitrary inputs.
package fuzztests
