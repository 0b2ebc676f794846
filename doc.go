// Package robotroute models a robot moving on a walled square grid as a
// discrete search problem.
//
// It exposes three pieces:
//
//   - Grid: the static occupancy matrix with its carved inner walls.
//   - Position: the robot state, identified by location only.
//   - RouteProblem: legal actions, successor states and heuristics, ready to be
//     handed to any algorithm in the search package.
//
// The robot moves one cell at a time in any of eight directions and may not
// immediately reverse its previous move.
package robotroute
