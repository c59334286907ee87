// Package server implements an MCP (Model Context Protocol) server exposing the
// steganography operations as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - stego_info: Read a raster header (format, dimensions, max-gray)
//   - stego_embed: Hide a secret raster in a cover raster
//   - stego_extract: Recover the secret approximation from a stego raster
//   - stego_run: Run the full embed/extract pipeline
//   - stego_compare: MSE/PSNR statistics between two rasters
//   - stego_preview: Render a raster as a base64 PNG
//
// Every raster must have the dimensions the server was started with.
//
// # Raster Caching
//
// Decoded rasters are cached by path for the lifetime of the process. Any path
// a tool writes to is evicted so later calls read the new contents.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, which names the failing stage and file
package server
