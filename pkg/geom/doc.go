// Package geom defines the value geometry shared by the sketch, the
// projection service and the correspondence matcher: 2D points, the
// Line/Arc/Circle curve sum type, closed polygons, and sketch planes.
// Vector math and bounding boxes come from sdfx so the same types flow into
// region SDFs and preview meshes without conversion.
package geom
