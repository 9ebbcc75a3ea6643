// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package network

import (
	"context"
	"fmt"
	"time"

	"github.com/aibor/beriboot/internal/config"
	"github.com/aibor/beriboot/internal/console"
	"github.com/aibor/beriboot/internal/report"
)

const (
	// deviceTimeout bounds the driver banners of devctl operations.
	deviceTimeout = 60 * time.Second

	// addressTimeout bounds the ifconfig output when querying the address.
	addressTimeout = 10 * time.Second
)

var (
	dhcpBound   = console.Regex(`bound to .* -- renewal in .*\.`)
	inetAddress = console.Regex(`inet (.+) netmask `)
)

// Controller toggles the configured interface on one target.
type Controller struct {
	Config   *config.Config
	Reporter *report.Reporter
}

// BringUp enables the interface and acquires a DHCP lease. The DHCP wait is
// bounded by the configured network timeout since lease acquisition time is
// environment dependent.
func (c *Controller) BringUp(ctx context.Context, sess *console.Session) error {
	ifc := c.Config.Interface()

	c.Reporter.Info("turning on networking (%s)", ifc)

	if !c.Config.UseQemu {
		// The emulated device is always enabled; devctl disable on it is
		// not recoverable.
		if err := sess.SendLine("/usr/sbin/devctl enable " + ifc); err != nil {
			return err
		}

		_, err := sess.Expect(ctx,
			[]console.Pattern{console.Literal(ifc + ": bpf attached")},
			deviceTimeout)
		if err != nil {
			return err
		}

		if err := sess.ExpectPrompt(ctx, 0); err != nil {
			return err
		}
	}

	if err := sess.RunCommand(ctx, "/sbin/ifconfig "+ifc+" up", 0); err != nil {
		return err
	}

	if c.Config.LinkStateBanner(ifc) {
		_, err := sess.Expect(ctx,
			[]console.Pattern{
				console.Literal(ifc + ": link state changed to UP"),
			},
			c.Config.Timeouts.Network)
		if err != nil {
			return err
		}
	}

	// Resync on a fresh prompt before starting DHCP.
	if err := sess.SendLine(""); err != nil {
		return err
	}

	if err := sess.ExpectPrompt(ctx, 0); err != nil {
		return err
	}

	if err := sess.SendLine("/sbin/dhclient " + ifc); err != nil {
		return err
	}

	_, err := sess.Expect(ctx,
		[]console.Pattern{dhcpBound}, c.Config.Timeouts.Network)
	if err != nil {
		return err
	}

	return sess.ExpectPrompt(ctx, 0)
}

// BringDown takes the interface down. The hardware device is additionally
// detached so it stops raising interrupts entirely.
func (c *Controller) BringDown(ctx context.Context, sess *console.Session) error {
	ifc := c.Config.Interface()

	c.Reporter.Info("turning off networking (%s)", ifc)

	err := sess.RunCommand(ctx, "/sbin/ifconfig "+ifc+" down", 0)
	if err != nil {
		return err
	}

	if c.Config.UseQemu {
		return nil
	}

	if err := sess.SendLine("/usr/sbin/devctl disable " + ifc); err != nil {
		return err
	}

	// A device that was never configured fails to disable; both responses
	// leave the interface quiet.
	_, err = sess.Expect(ctx,
		[]console.Pattern{
			console.Literal(ifc + ": detached"),
			console.Literal(
				"Failed to disable " + ifc + ": Device not configured"),
		},
		deviceTimeout)

	return err
}

// IPAddress queries the interface's IPv4 address.
//
// A missing interface is reported as [ErrNoSuchInterface]; retrying cannot
// help there, unlike a timeout while the lease is still being negotiated.
func (c *Controller) IPAddress(
	ctx context.Context,
	sess *console.Session,
) (string, error) {
	ifc := c.Config.Interface()

	if err := sess.SendLine("ifconfig " + ifc); err != nil {
		return "", err
	}

	match, err := sess.Expect(ctx,
		[]console.Pattern{
			inetAddress,
			console.Literal("interface " + ifc + " does not exist"),
		},
		addressTimeout)
	if err != nil {
		return "", err
	}

	if match.Index == 1 {
		_ = sess.ExpectPrompt(ctx, 0)

		return "", fmt.Errorf("%w: %s", ErrNoSuchInterface, ifc)
	}

	addr := match.Groups[1]

	if err := sess.ExpectPrompt(ctx, 0); err != nil {
		return "", err
	}

	return addr, nil
}
