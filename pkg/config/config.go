/*
Copyright 2022 The Katalyst Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config is the package that contains the configurations of the
// bound analyzer: the analyzed system, the traces and the outputs.
package config // import "github.com/kubewharf/katalyst-membound/pkg/config"

import (
	"k8s.io/apimachinery/pkg/util/errors"

	"github.com/kubewharf/katalyst-membound/pkg/config/generic"
	"github.com/kubewharf/katalyst-membound/pkg/config/membound"
)

// Configuration stores all the configurations needed by one analysis run;
// it is only filled by flags and not modified afterwards.
type Configuration struct {
	*generic.GenericConfiguration
	*membound.BoundConfiguration
}

func NewConfiguration() *Configuration {
	return &Configuration{
		GenericConfiguration: generic.NewGenericConfiguration(),
		BoundConfiguration:   membound.NewBoundConfiguration(),
	}
}

func (c *Configuration) Validate() error {
	return errors.NewAggregate([]error{
		c.OutputConfiguration.Validate(),
		c.BoundConfiguration.Validate(),
	})
}
