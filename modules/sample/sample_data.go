package sample

// nightStreetPNG - 96x54 PNG (비 오는 밤거리, 네온)
const nightStreetPNG = "iVBORw0KGgoAAAANSUhEUgAAAGAAAAA2CAIAAAC3LQuFAAACG0lEQVR42u3Q2U4UQRQG4P8aZobZZ5gVRRAFlyiucWNWxSXKokbBLTyTgCzuS1TcnsKH4DW4Hk7SptPpPnOmmJYL6JN86VTXnzpV+dETWlAC9IReKAF6Q8+VAL3hZ0qAUPipElBBT5QA4ci8ElBBc0qASOSxEqA18salr+9RF/brHLagh13Yr3OYgqLRB6yRzZaXnZrPkdFB+SLzOR3fY3IRW9B9Vptx/1LzObL2Be14Tsf3mFzEFBSLzrLYcXZqPkfWrqAu5nR8j8lFiMVmDPHjjI/v0YsQj00bYseZH9+jF1FBU0qARPyeEiAZv6sESCbuKAFSidtKQAXdUgKkkzeVgAqaVAJkkjeUAJnUdSVANtVUAvSnG0pABdWUALl0VQmQy1SUAPnMhBJQQdeUAIXsVSWggq4oAYrZy0qAUv8lJaCCLrJeTvzRiKCcu+C1WPnN7gcwooLOuyxWfnk3AxthIHfOaany07UT8AgD+bO2peoP56//qLX118Keapf+92f4iXAgf8ayXN2w1y5dR3YF7Ck23Y1n+ImooHGyXP1uLbz8RI4KmFPedJee4SfCwcLpV7Vv9GVphJXa18HCKZZGBIPFk6yV+heNCA4VT3it1j+z+wGMqKDjLqv1T97NwEYYKh1zWmt8dO0EPKKCxmxrjQ/OX43oi+HSqGW98d5euwQ5wnD5KFlvvrMWXgGPcLh85HXzLX1ZGm0D9slC6NsNyncAAAAASUVORK5CYII="
