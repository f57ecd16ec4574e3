// Standee is a batch pipeline for producing stylized desk-standee portraits.
// It drives a ComfyUI backend over its HTTP API to perform face swap +
// cartoon stylization at volume, and ships standalone tooling for drawing
// colored borders around the subject of the resulting transparent PNGs.
package standee
