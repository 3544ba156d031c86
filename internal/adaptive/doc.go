// Package adaptive implements the online parameter-update laws.
//
// Three controllers are provided:
//
//   - [Law]: the gradient law dot_theta = -sign(b) GAMMA phi e with
//     independently toggleable sigma modification and saturation
//     (anti-windup) protection
//   - [PI]: the adaptive PI controller estimating plant inertia and
//     damping while tracking a commanded trajectory
//   - [MIMO]: the classical multivariable law with a matrix gain
//
// All misconfiguration (non-positive-definite GAMMA, bad dimensions,
// negative rates) fails at construction with a dynamo.ConfigError; the
// derivative methods never fail.
package adaptive
