package world

// Bundle groups multiple components into a single value that can be
// inserted wherever one component is expected. Bundles nest; insertion
// flattens them recursively.
func Bundle(components ...AnyComponent) AnyComponent {
	return &bundleComponent{Components: components}
}

type bundleComponent struct {
	Components []AnyComponent
}

func flattenComponents(target []AnyComponent, components ...AnyComponent) []AnyComponent {
	for _, component := range components {
		if bundle, ok := component.(*bundleComponent); ok {
			// recurse into the bundle and flatten its components
			target = flattenComponents(target, bundle.Components...)
		} else {
			target = append(target, component)
		}
	}

	return target
}
